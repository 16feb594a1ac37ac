package landmask

import (
	"errors"
	"testing"
)

func TestFromRowsRoundTrip(t *testing.T) {
	rows := []string{
		".....",
		".##..",
		"..#..",
		".....",
	}
	m, err := FromRows(rows)
	if err != nil {
		t.Fatalf("FromRows failed: %v", err)
	}
	if m.Width != 5 || m.Height != 4 {
		t.Fatalf("dimensions = %dx%d, want 5x4", m.Width, m.Height)
	}
	if m.LandCount() != 3 {
		t.Errorf("LandCount() = %d, want 3", m.LandCount())
	}
	got := m.Rows()
	for i := range rows {
		if got[i] != rows[i] {
			t.Errorf("row %d = %q, want %q", i, got[i], rows[i])
		}
	}
}

func TestFromRowsRejectsRagged(t *testing.T) {
	_, err := FromRows([]string{"...", ".."})
	if !errors.Is(err, ErrBadRows) {
		t.Errorf("FromRows error = %v, want ErrBadRows", err)
	}
}

func TestLockedTilesIgnoreSet(t *testing.T) {
	m := New(6, 4)
	i := m.Index(2, 1)
	m.Lock(i)
	if m.Set(i, Land) {
		t.Error("Set on a locked tile reported success")
	}
	if m.Get(i) != Water {
		t.Error("locked tile changed")
	}
	m.Unlock()
	if !m.Set(i, Land) || m.Get(i) != Land {
		t.Error("Set after Unlock did not apply")
	}
}

func TestMirroredSetWritesTwin(t *testing.T) {
	m := New(7, 4)
	m.SetMirrored(true)
	m.Set(m.Index(1, 2), Land)
	if m.At(5, 2) != Land {
		t.Error("mirrored Set did not write the reflected tile")
	}
	if m.MirrorMismatches() != 0 {
		t.Errorf("MirrorMismatches() = %d, want 0", m.MirrorMismatches())
	}

	m.Lock(m.Index(5, 1))
	if m.Set(m.Index(1, 1), Land) {
		t.Error("mirrored Set applied although the twin is locked")
	}
}

func TestReflectLeft(t *testing.T) {
	m, _ := FromRows([]string{
		"......",
		".##...",
		"......",
	})
	if m.MirrorMismatches() != 2 {
		t.Fatalf("MirrorMismatches() = %d, want 2", m.MirrorMismatches())
	}
	m.ReflectLeft()
	if m.MirrorMismatches() != 0 {
		t.Errorf("MirrorMismatches() after reflect = %d, want 0", m.MirrorMismatches())
	}
	if m.Rows()[1] != ".####." {
		t.Errorf("row 1 = %q, want .####.", m.Rows()[1])
	}
}

func TestForceBorderWater(t *testing.T) {
	m := New(5, 5)
	for i := range m.Tiles() {
		m.Tiles()[i] = Land
	}
	m.ForceBorderWater()
	if m.LandCount() != 9 {
		t.Errorf("LandCount() = %d, want 9", m.LandCount())
	}
	for i := range m.Tiles() {
		if m.OnBorder(i) && m.IsLand(i) {
			t.Errorf("border tile %d is land", i)
		}
	}
}

func TestCloneIsIndependent(t *testing.T) {
	m := New(4, 4)
	m.Lock(5)
	c := m.Clone()
	c.Tiles()[6] = Land
	if m.Get(6) != Water {
		t.Error("editing the clone changed the original")
	}
	if !c.Locked(5) {
		t.Error("clone lost its locks")
	}
	if m.Equal(c) {
		t.Error("Equal() = true for different masks")
	}
	if n := m.Diff(c); n != 1 {
		t.Errorf("Diff() = %d, want 1", n)
	}
	if n := c.Diff(c.Clone()); n != 0 {
		t.Errorf("Diff() against a copy = %d, want 0", n)
	}
}

func TestFingerprint(t *testing.T) {
	a := New(8, 6)
	b := New(8, 6)
	if a.Fingerprint() != b.Fingerprint() {
		t.Error("identical masks have different fingerprints")
	}
	b.Set(b.Index(3, 3), Land)
	if a.Fingerprint() == b.Fingerprint() {
		t.Error("different masks share a fingerprint")
	}
	if New(6, 8).Fingerprint() == a.Fingerprint() {
		t.Error("fingerprint ignores dimensions")
	}
}
