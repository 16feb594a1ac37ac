package params

// Default returns the built-in parameter set used when no file is present.
func Default() *Params {
	continents := Constraints{
		MinLandRatio:    0.35,
		MaxLandRatio:    0.55,
		MinLargestRatio: 0.25,
		MaxLargestRatio: 0.55,
		MinComponents:   2,
		MaxComponents:   6,
		MinIslands:      2,
		MinLakes:        1,
		MaxLakes:        4,
	}
	small := Constraints{
		MinLandRatio:    0.30,
		MaxLandRatio:    0.50,
		MinLargestRatio: 0.0,
		MaxLargestRatio: 0.45,
		MinComponents:   5,
		MaxComponents:   15,
		MinIslands:      6,
		MinLakes:        1,
		MaxLakes:        6,
	}
	island := Constraints{
		MinLandRatio:    0.20,
		MaxLandRatio:    0.40,
		MinLargestRatio: 0.0,
		MaxLargestRatio: 0.30,
		MinComponents:   8,
		MaxComponents:   32,
		MinIslands:      12,
		MinLakes:        0,
		MaxLakes:        3,
	}
	pangea := Constraints{
		MinLandRatio:    0.35,
		MaxLandRatio:    0.55,
		MinLargestRatio: 0.80,
		MaxLargestRatio: 1.0,
		MinComponents:   1,
		MaxComponents:   4,
		MinIslands:      1,
		MinLakes:        1,
		MaxLakes:        6,
	}
	terra := Constraints{
		MinLandRatio:    0.35,
		MaxLandRatio:    0.55,
		MinLargestRatio: 0.45,
		MaxLargestRatio: 0.70,
		MinComponents:   2,
		MaxComponents:   10,
		MinIslands:      2,
		MinLakes:        1,
		MaxLakes:        4,
	}
	mirror := Constraints{
		MinLandRatio:    0.35,
		MaxLandRatio:    0.55,
		MinLargestRatio: 0.25,
		MaxLargestRatio: 0.60,
		MinComponents:   2,
		MaxComponents:   12,
		MinIslands:      2,
		MinLakes:        0,
		MaxLakes:        5,
	}

	return &Params{
		Global: Global{
			BaseFactor:       16,
			MaxRepairIters:   4,
			MinLakeSize:      4,
			IslandMaxMin:     20,
			IslandMaxMax:     40,
			IslandMaxDivisor: 220,
			MidMaxMin:        120,
			MidMaxMax:        260,
			MidMaxDivisor:    28,
		},
		Continents:       defaultStyle(9, 7, 5, 2, 0.0, continents),
		SmallContinents:  defaultStyle(8, 12, 8, 1, 0.0, small),
		IslandContinents: defaultStyle(6, 14, 12, 0, 0.0, island),
		Pangea:           defaultStyle(10, 4, 2, 2, 0.65, pangea),
		Terra: Terra{
			OldWorld:          defaultStyle(11, 6, 4, 2, 0.30, terra),
			NewWorld:          defaultStyle(8, 10, 8, 1, 0.15, terra),
			MergedConstraints: terra,
			MergedRepair: Repair{
				LargestCarveTriggerRatio: 1.0,
				LargestCarveTargetRatio:  1.0,
				IslandMinBlob:            2,
				IslandMaxBlob:            5,
				IslandExtraMissingFloor:  2,
				ErodeCapRatio:            1.0,
				TerraGrowBudget:          40,
				LandRatioAdjustCapDiv:    10,
				LakeBlobMin:              4,
				LakeBlobMax:              7,
			},
			BarrierMin: 6,
			BarrierMax: 12,
		},
		Mirror: Mirror{
			Base:                defaultStyle(9, 9, 5, 1, 0.0, mirror),
			HalfSmoothingPasses: 2,
		},
	}
}

func defaultStyle(base, fuzzy, coast, smoothing int, centerBias float64, c Constraints) Style {
	return Style{
		Draft: Draft{
			BaseLandPercent:    base,
			FuzzyFlipPercent:   fuzzy,
			CoastIslandPercent: coast,
			SmoothingPasses:    smoothing,
			CenterBias:         centerBias,
		},
		Constraints: c,
		Repair:      defaultRepair(),
	}
}

func defaultRepair() Repair {
	return Repair{
		LargestCarveTriggerRatio: 0.65,
		LargestCarveTargetRatio:  0.55,
		LargestCarveScale:        30.0,
		LargestCarveBaseCount:    2,
		ChannelCarveCount:        6,
		IslandMinBlob:            2,
		IslandMaxBlob:            6,
		IslandExtraMissingFloor:  2,
		ErodeCapRatio:            0.30,
		PangeaFillInternalCount:  12,
		PangeaConnectCount:       3,
		PangeaConnectWhenSplit:   2,
		TerraGrowBudget:          40,
		LandRatioAdjustCapDiv:    10,
		LakeBlobMin:              4,
		LakeBlobMax:              7,
	}
}
