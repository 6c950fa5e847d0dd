package main

import (
	"testing"
	"time"
)

func TestParseMarkdown(t *testing.T) {
	input := "---\ndescription: weekly\nstatus: in-progress\ntags: [home, chores]\ndue_date: 2026-11-02\n---\n# Chores\n- vacuum\n* dishes\n  -   \nnot a task\n"
	fm, items, err := parseMarkdown(input)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(items) != 2 || items[0] != "vacuum" || items[1] != "dishes" {
		t.Fatalf("unexpected items: %v", items)
	}

	req, err := fm.request()
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if req.Description == nil || *req.Description != "weekly" {
		t.Fatalf("expected description, got %v", req.Description)
	}
	if req.Status == nil || *req.Status != "in-progress" {
		t.Fatalf("expected status, got %v", req.Status)
	}
	if len(req.Tags) != 2 {
		t.Fatalf("expected tags, got %v", req.Tags)
	}
	want := time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC)
	if req.DueDate == nil || !req.DueDate.Equal(want) {
		t.Fatalf("expected due date %v, got %v", want, req.DueDate)
	}
	if req.Priority != nil || req.AssigneeID != nil {
		t.Fatalf("expected unset fields to stay nil: %+v", req)
	}
}

func TestParseMarkdownWithoutFrontMatter(t *testing.T) {
	_, items, err := parseMarkdown("- one\n- two\n")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected two items, got %v", items)
	}
}

func TestParseMarkdownUnclosedFrontMatter(t *testing.T) {
	if _, _, err := parseMarkdown("---\nstatus: pending\n- one\n"); err == nil {
		t.Fatal("expected unclosed front matter error")
	}
}

func TestParseDueDate(t *testing.T) {
	tests := []struct {
		raw     string
		wantErr bool
	}{
		{raw: "2026-01-31"},
		{raw: "2026-01-31T09:30:00+02:00"},
		{raw: "next tuesday", wantErr: true},
	}
	for _, tc := range tests {
		_, err := parseDueDate(tc.raw)
		if (err != nil) != tc.wantErr {
			t.Fatalf("parseDueDate(%q) error = %v, wantErr %v", tc.raw, err, tc.wantErr)
		}
	}
}
