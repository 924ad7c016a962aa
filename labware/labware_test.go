package labware

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kbukum/liquidkit/errors"
)

func mustDef(t *testing.T, loadName string) Definition {
	t.Helper()
	d, err := NewRegistry().Lookup(loadName)
	if err != nil {
		t.Fatalf("lookup %s: %v", loadName, err)
	}
	return d
}

func TestWellOrderIsColumnMajor(t *testing.T) {
	plate := New(mustDef(t, "nest_96_wellplate_100ul_pcr_full_skirt"), 2, "Output")
	wells := plate.Wells()
	if len(wells) != 96 {
		t.Fatalf("expected 96 wells, got %d", len(wells))
	}
	want := []string{"A1", "B1", "C1", "D1", "E1", "F1", "G1", "H1", "A2"}
	for i, name := range want {
		if wells[i].Name() != name {
			t.Errorf("well %d: expected %s, got %s", i, name, wells[i].Name())
		}
	}
	if wells[95].Name() != "H12" {
		t.Errorf("expected last well H12, got %s", wells[95].Name())
	}
}

func TestWellByName(t *testing.T) {
	plate := New(mustDef(t, "corning_384_wellplate_112ul_flat"), 6, "Destination")

	tests := []struct {
		name    string
		wantErr bool
	}{
		{"A1", false},
		{"B2", false},
		{"P24", false},
		{"Z99", true},
		{"Q1", true},
		{"A25", true},
		{"", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w, err := plate.WellByName(tc.name)
			if tc.wantErr {
				if !errors.Is(err, errors.ErrCodeLookup) {
					t.Fatalf("expected lookup error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if w.Name() != tc.name {
				t.Errorf("expected %s, got %s", tc.name, w.Name())
			}
		})
	}
}

func TestRowsAndColumns(t *testing.T) {
	plate := New(mustDef(t, "nest_96_wellplate_100ul_pcr_full_skirt"), 1, "")
	if plate.Name() != "nest_96_wellplate_100ul_pcr_full_skirt" {
		t.Errorf("expected load name as fallback label, got %q", plate.Name())
	}
	row := plate.Row(0)
	if len(row) != 12 || row[0].Name() != "A1" || row[11].Name() != "A12" {
		t.Errorf("unexpected first row: %v", row)
	}
	col := plate.Column(3)
	if len(col) != 8 || col[0].Name() != "A4" || col[7].Name() != "H4" {
		t.Errorf("unexpected fourth column: %v", col)
	}
	if plate.Column(12) != nil || plate.Row(-1) != nil {
		t.Error("expected nil for out-of-range column or row")
	}
}

func TestLocationHeight(t *testing.T) {
	res := New(mustDef(t, "agilent_1_reservoir_290ml"), 8, "Source")
	w, _ := res.WellByName("A1")
	depth := res.Definition().WellDepth

	tests := []struct {
		name string
		loc  Location
		want float64
	}{
		{"bottom offset", w.Bottom(6), 6},
		{"top inside", w.Top(-6), depth - 6},
		{"center", w.Center(), depth / 2},
		{"trash", Location{}, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.loc.Height(); got != tc.want {
				t.Errorf("expected %.2f, got %.2f", tc.want, got)
			}
		})
	}
	if !(Location{}).IsTrash() {
		t.Error("zero location should be trash")
	}
	if s := w.Bottom(6).String(); !strings.Contains(s, "A1 of Source on 8") || !strings.Contains(s, "+6.0mm") {
		t.Errorf("unexpected location string %q", s)
	}
}

func TestLiquidTracking(t *testing.T) {
	plate := New(mustDef(t, "corning_384_wellplate_112ul_flat"), 6, "")
	w, _ := plate.WellByName("B2")
	w.Add(54)
	w.Add(6)
	if w.Volume() != 60 {
		t.Errorf("expected 60, got %v", w.Volume())
	}
	w.Remove(70)
	if w.Volume() != -10 {
		t.Errorf("expected tracked volume to go negative, got %v", w.Volume())
	}
}

func TestChannelWells(t *testing.T) {
	plate96 := New(mustDef(t, "nest_96_wellplate_100ul_pcr_full_skirt"), 1, "")
	plate384 := New(mustDef(t, "corning_384_wellplate_112ul_flat"), 6, "")
	res := New(mustDef(t, "usascientific_12_reservoir_22ml"), 7, "")

	a4, _ := plate96.WellByName("A4")
	b4, _ := plate96.WellByName("B4")
	b1, _ := plate384.WellByName("B1")
	c1, _ := plate384.WellByName("C1")
	r3, _ := res.WellByName("A3")

	t.Run("single channel", func(t *testing.T) {
		got, err := ChannelWells(b4, 1)
		if err != nil || len(got) != 1 || got[0] != b4 {
			t.Errorf("expected [B4], got %v %v", got, err)
		}
	})
	t.Run("96 column", func(t *testing.T) {
		got, err := ChannelWells(a4, 8)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 8 || got[0].Name() != "A4" || got[7].Name() != "H4" {
			t.Errorf("unexpected wells %v", got)
		}
	})
	t.Run("96 not row A", func(t *testing.T) {
		if _, err := ChannelWells(b4, 8); !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("expected invalid input, got %v", err)
		}
	})
	t.Run("384 every other row", func(t *testing.T) {
		got, err := ChannelWells(b1, 8)
		if err != nil {
			t.Fatal(err)
		}
		if got[0].Name() != "B1" || got[1].Name() != "D1" || got[7].Name() != "P1" {
			t.Errorf("unexpected wells %v", got)
		}
		if _, err := ChannelWells(c1, 8); err == nil {
			t.Error("expected error for row C")
		}
	})
	t.Run("reservoir shares well", func(t *testing.T) {
		got, err := ChannelWells(r3, 8)
		if err != nil {
			t.Fatal(err)
		}
		for _, w := range got {
			if w != r3 {
				t.Fatalf("expected every channel in A3, got %v", got)
			}
		}
	})
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Lookup("no_such_plate"); !errors.Is(err, errors.ErrCodeLookup) {
		t.Errorf("expected lookup error, got %v", err)
	}
	names := r.Names()
	if len(names) == 0 || names[0] > names[len(names)-1] {
		t.Errorf("expected sorted names, got %v", names)
	}
	if err := r.Register(Definition{LoadName: "bad", Category: "bucket", Rows: 1, Columns: 1, WellDepth: 1, MaxVolume: 1}); err == nil {
		t.Error("expected invalid category to be rejected")
	}
}

func TestRegistryLoadYAML(t *testing.T) {
	doc := `
definitions:
  - load_name: biorad_96_wellplate_200ul_pcr
    category: wellPlate
    rows: 8
    columns: 12
    well_depth_mm: 14.81
    max_volume_ul: 200
`
	r := NewRegistry()
	n, err := r.LoadYAML([]byte(doc))
	if err != nil {
		t.Fatalf("LoadYAML: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 definition, got %d", n)
	}
	d, err := r.Lookup("biorad_96_wellplate_200ul_pcr")
	if err != nil {
		t.Fatal(err)
	}
	if d.WellCount() != 96 || d.MaxVolume != 200 {
		t.Errorf("unexpected definition %+v", d)
	}

	t.Run("invalid definition registers nothing", func(t *testing.T) {
		bad := `
definitions:
  - load_name: ok_plate
    category: wellPlate
    rows: 8
    columns: 12
    well_depth_mm: 10
    max_volume_ul: 100
  - load_name: huge_plate
    category: wellPlate
    rows: 32
    columns: 48
    well_depth_mm: 10
    max_volume_ul: 100
`
		r := NewRegistry()
		if _, err := r.LoadYAML([]byte(bad)); !errors.Is(err, errors.ErrCodeConfig) {
			t.Fatalf("expected config error, got %v", err)
		}
		if _, err := r.Lookup("ok_plate"); err == nil {
			t.Error("expected no definitions registered")
		}
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "labware.yml")
		if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := NewRegistry().LoadFile(path); err != nil {
			t.Errorf("LoadFile: %v", err)
		}
		if _, err := NewRegistry().LoadFile(filepath.Join(t.TempDir(), "missing.yml")); err == nil {
			t.Error("expected error for missing file")
		}
	})
}
