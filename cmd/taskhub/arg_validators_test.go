package main

import "testing"

func TestRequireTaskID(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{name: "none", args: nil, wantErr: true},
		{name: "one", args: []string{"tk-a1b2"}},
		{name: "two", args: []string{"tk-a1b2", "tk-c3d4"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := requireTaskID(nil, tt.args)
			if (err != nil) != tt.wantErr {
				t.Fatalf("requireTaskID(%v) error = %v, wantErr %v", tt.args, err, tt.wantErr)
			}
			if err != nil && err.Error() != "task id is required" {
				t.Fatalf("unexpected message %q", err.Error())
			}
		})
	}
}

func TestRequireAtLeastOneID(t *testing.T) {
	if err := requireAtLeastOneID(nil, nil); err == nil {
		t.Fatal("expected error without ids")
	}
	if err := requireAtLeastOneID(nil, []string{"tk-a1b2", "tk-c3d4"}); err != nil {
		t.Fatalf("expected several ids to pass, got %v", err)
	}
}
