package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"hr-ledger/internal/model"
	"hr-ledger/pkg/clock"
)

func TestAuditService_Diff(t *testing.T) {
	loc := tehran(t)
	repo, _ := newMockRepository()
	svc := NewAuditService(repo, clock.Fixed(time.Now(), loc), zap.NewNop())

	entry := time.Date(2024, 3, 1, 8, 0, 0, 0, loc)
	exit := time.Date(2024, 3, 1, 17, 0, 0, 0, loc)
	base := &model.CommuteLog{ID: 1, EntryTime: entry}

	tests := []struct {
		name   string
		after  model.CommuteLog
		fields []string
	}{
		{"unchanged", model.CommuteLog{ID: 1, EntryTime: entry}, nil},
		{"same instant other zone", model.CommuteLog{ID: 1, EntryTime: entry.UTC()}, nil},
		{"exit set", model.CommuteLog{ID: 1, EntryTime: entry, ExitTime: &exit}, []string{model.FieldExitTime}},
		{"both", model.CommuteLog{ID: 1, EntryTime: entry.Add(time.Minute), ExitTime: &exit}, []string{model.FieldEntryTime, model.FieldExitTime}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			changes := svc.Diff(base, &tt.after)
			if len(changes) != len(tt.fields) {
				t.Fatalf("expected %d changes, got %+v", len(tt.fields), changes)
			}
			for i, f := range tt.fields {
				if changes[i].Field != f {
					t.Errorf("change %d: expected %s, got %s", i, f, changes[i].Field)
				}
			}
		})
	}
}

func TestAuditService_RecordAndList(t *testing.T) {
	loc := tehran(t)
	now := time.Date(2024, 3, 2, 9, 0, 0, 0, loc)
	repo, mocks := newMockRepository()
	svc := NewAuditService(repo, clock.Fixed(now, loc), zap.NewNop())
	ctx := context.Background()

	log := &model.CommuteLog{ID: 5, PersonnelCode: "1001"}
	newVal := "2024-03-01T17:00:00+03:30"
	if err := svc.Record(ctx, repo, log, "Admin", []FieldChange{{Field: model.FieldExitTime, NewValue: &newVal}}); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if err := svc.Record(ctx, repo, log, "Admin", nil); err != nil {
		t.Fatalf("empty Record should be a no-op: %v", err)
	}
	if len(mocks.edits.logs) != 1 {
		t.Fatalf("expected 1 edit log, got %d", len(mocks.edits.logs))
	}
	if !mocks.edits.logs[0].EditTimestamp.Equal(now) {
		t.Errorf("edit timestamp should come from the clock, got %v", mocks.edits.logs[0].EditTimestamp)
	}

	list, err := svc.ListByCommuteLog(ctx, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].OldValue != nil || *list[0].NewValue != newVal {
		t.Errorf("unexpected history %+v", list)
	}
	if list[0].EditTimestamp != "2024-03-02T09:00:00+03:30" {
		t.Errorf("unexpected edit timestamp %s", list[0].EditTimestamp)
	}
}
