package models

import "testing"

func TestParseStatus(t *testing.T) {
	tests := []struct {
		raw     string
		want    TaskStatus
		wantErr bool
	}{
		{raw: " PENDING ", want: StatusPending},
		{raw: "in_progress", want: StatusInProgress},
		{raw: "In-Progress", want: StatusInProgress},
		{raw: "completed", want: StatusCompleted},
		{raw: "", wantErr: true},
		{raw: "done", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseStatus(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("parse status: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestParsePriorityAndCategory(t *testing.T) {
	priority, err := ParsePriority(" HIGH ")
	if err != nil {
		t.Fatalf("parse priority: %v", err)
	}
	if priority != PriorityHigh {
		t.Fatalf("expected %q, got %q", PriorityHigh, priority)
	}
	if _, err := ParsePriority("urgent"); err == nil {
		t.Fatal("expected invalid priority error")
	}

	category, err := ParseCategory("Work")
	if err != nil {
		t.Fatalf("parse category: %v", err)
	}
	if category != CategoryWork {
		t.Fatalf("expected %q, got %q", CategoryWork, category)
	}
	if _, err := ParseCategory("chores"); err == nil {
		t.Fatal("expected invalid category error")
	}
}

func TestParseSharePermission(t *testing.T) {
	got, err := ParseSharePermission("")
	if err != nil || got != ShareView {
		t.Fatalf("expected default view permission, got %q err=%v", got, err)
	}
	got, err = ParseSharePermission("EDIT")
	if err != nil || got != ShareEdit {
		t.Fatalf("expected edit permission, got %q err=%v", got, err)
	}
	if _, err := ParseSharePermission("admin"); err == nil {
		t.Fatal("expected invalid permission error")
	}
}

func TestPriorityRank(t *testing.T) {
	if !(PriorityRank(PriorityHigh) > PriorityRank(PriorityMedium) && PriorityRank(PriorityMedium) > PriorityRank(PriorityLow)) {
		t.Fatal("expected high > medium > low")
	}
	if PriorityRank("unknown") != 0 {
		t.Fatal("expected unknown priority to rank 0")
	}
}
