package avatar

import (
	"encoding/json"
	"testing"

	"github.com/matzehuels/heightchart/pkg/errors"
)

func TestValidate(t *testing.T) {
	valid := Avatar{Kind: KindPerson, Name: "Alice", Height: 165, Color: "#ff832d"}

	tests := []struct {
		name    string
		mutate  func(*Avatar)
		wantErr bool
	}{
		{"valid person", func(a *Avatar) {}, false},
		{"valid object", func(a *Avatar) { a.Kind = KindObject }, false},
		{"zero height", func(a *Avatar) { a.Height = 0 }, true},
		{"negative height", func(a *Avatar) { a.Height = -5 }, true},
		{"negative weight", func(a *Avatar) { a.Weight = -1 }, true},
		{"unknown kind", func(a *Avatar) { a.Kind = "dragon" }, true},
		{"bad color", func(a *Avatar) { a.Color = "red;" }, true},
		{"bad locator", func(a *Avatar) { a.Locator = "../secret.svg" }, true},
		{"negative aspect", func(a *Avatar) { a.Aspect = -0.2 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := valid
			tt.mutate(&a)
			err := a.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeInvalidAvatar) {
				t.Errorf("Validate() code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidAvatar)
			}
		})
	}
}

func TestAspectRatio(t *testing.T) {
	if got := (Avatar{Kind: KindPerson}).AspectRatio(); got != DefaultPersonAspect {
		t.Errorf("person AspectRatio() = %v, want %v", got, DefaultPersonAspect)
	}
	if got := (Avatar{Kind: KindObject}).AspectRatio(); got != DefaultObjectAspect {
		t.Errorf("object AspectRatio() = %v, want %v", got, DefaultObjectAspect)
	}
	if got := (Avatar{Kind: KindPerson, Aspect: 0.5}).AspectRatio(); got != 0.5 {
		t.Errorf("explicit AspectRatio() = %v, want 0.5", got)
	}
}

func TestPatchApply(t *testing.T) {
	orig := Avatar{ID: "a1", Kind: KindPerson, Name: "Bob", Height: 170}
	name := "Robert"
	height := 172.5

	got := Patch{Name: &name, Height: &height}.Apply(orig)

	if got.ID != "a1" {
		t.Errorf("ID = %q, want a1", got.ID)
	}
	if got.Name != "Robert" || got.Height != 172.5 {
		t.Errorf("Apply() = %+v", got)
	}
	if orig.Name != "Bob" {
		t.Error("Apply() modified the original")
	}
	if !(Patch{}).IsEmpty() {
		t.Error("zero Patch should be empty")
	}
}

func TestTallest(t *testing.T) {
	tests := []struct {
		name    string
		heights []float64
		want    float64
	}{
		{"empty uses floor", nil, 180},
		{"all shorter", []float64{150, 160}, 180},
		{"taller wins", []float64{150, 200, 180}, 200},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var list []Avatar
			for _, h := range tt.heights {
				list = append(list, Avatar{Height: h})
			}
			if got := Tallest(list, 180); got != tt.want {
				t.Errorf("Tallest() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestJSONShape(t *testing.T) {
	a := Avatar{ID: "x", Kind: KindPerson, Name: "Al", Height: 180, Locator: "p.svg"}
	data, err := json.Marshal(a)
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	if m["type"] != "person" || m["avatar"] != "p.svg" {
		t.Errorf("unexpected JSON keys: %s", data)
	}
	if _, ok := m["weight"]; ok {
		t.Errorf("weight should be omitted when absent: %s", data)
	}
}
