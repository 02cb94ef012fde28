package diff

import (
	"errors"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		item    Item
		wantErr bool
	}{
		{"insert ok", Item{Path: "a", After: "x", Kind: KindInsert}, false},
		{"insert with before", Item{Path: "a", Before: "y", After: "x", Kind: KindInsert}, true},
		{"delete ok", Item{Path: "a", Before: "x", Kind: KindDelete}, false},
		{"delete with after", Item{Path: "a", Before: "x", After: "y", Kind: KindDelete}, true},
		{"modify ok", Item{Path: "a", Before: "x", After: "y", Kind: KindModify}, false},
		{"modify missing after", Item{Path: "a", Before: "x", Kind: KindModify}, true},
		{"unknown kind", Item{Path: "a", Before: "x", Kind: "move"}, true},
		{"empty path", Item{Before: "x", Kind: KindDelete}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.item.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidItem) {
				t.Errorf("expected ErrInvalidItem, got %v", err)
			}
		})
	}
}

func TestInvert_FlipsKinds(t *testing.T) {
	tests := []struct {
		in   Item
		want Kind
	}{
		{Item{Path: "a", After: "x", Kind: KindInsert}, KindDelete},
		{Item{Path: "a", Before: "x", Kind: KindDelete}, KindInsert},
		{Item{Path: "a", Before: "x", After: "y", Kind: KindModify}, KindModify},
	}

	for _, tt := range tests {
		inv, err := Invert(tt.in)
		if err != nil {
			t.Fatalf("Invert(%v) error: %v", tt.in, err)
		}
		if inv.Kind != tt.want {
			t.Errorf("Invert(%s).Kind = %s, want %s", tt.in.Kind, inv.Kind, tt.want)
		}
		if inv.Before != tt.in.After || inv.After != tt.in.Before {
			t.Errorf("payload not swapped: %+v", inv)
		}
		if !IsInverse(tt.in, inv) {
			t.Errorf("IsInverse(%v, %v) = false", tt.in, inv)
		}
	}
}

func TestInvert_Twice(t *testing.T) {
	it := Item{Path: "s", Before: "old", After: "new", Kind: KindModify, Category: CategoryContent, Index: 3}
	once, err := Invert(it)
	if err != nil {
		t.Fatal(err)
	}
	twice, err := Invert(once)
	if err != nil {
		t.Fatal(err)
	}
	if twice.Before != it.Before || twice.After != it.After || twice.Kind != it.Kind || twice.Index != it.Index {
		t.Errorf("double inversion = %+v, want %+v", twice, it)
	}
}

func TestInvertAll_ReversesOrder(t *testing.T) {
	items := []Item{
		{Path: "a", After: "1", Kind: KindInsert},
		{Path: "b", Before: "2", After: "3", Kind: KindModify},
		{Path: "c", Before: "4", Kind: KindDelete},
	}

	inv, err := InvertAll(items)
	if err != nil {
		t.Fatalf("InvertAll failed: %v", err)
	}
	if len(inv) != 3 {
		t.Fatalf("expected 3 items, got %d", len(inv))
	}
	if inv[0].Path != "c" || inv[1].Path != "b" || inv[2].Path != "a" {
		t.Errorf("unexpected order: %s %s %s", inv[0].Path, inv[1].Path, inv[2].Path)
	}
	if inv[0].Kind != KindInsert || inv[2].Kind != KindDelete {
		t.Errorf("kinds not flipped: %s %s", inv[0].Kind, inv[2].Kind)
	}
}

func TestInvertAll_AbortsOnInvalid(t *testing.T) {
	items := []Item{
		{Path: "a", After: "1", Kind: KindInsert},
		{Path: "b", Kind: KindModify},
	}
	if _, err := InvertAll(items); err == nil {
		t.Fatal("expected error for invalid item")
	}
}
