package codec

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestToDomain_NormalizesProcessRef(t *testing.T) {
	raw := `{"proccesId":"12","humanTime":30,"entryDate":"2024-02-10T08:30:00+02:00","jobId":"job-1"}`
	var p Payload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	rec, err := p.ToDomain()
	if err != nil {
		t.Fatalf("ToDomain: %v", err)
	}
	if rec.ProcessID == nil || *rec.ProcessID != 12 {
		t.Errorf("ProcessID = %v, want 12", rec.ProcessID)
	}
	if rec.HumanTime == nil || *rec.HumanTime != 30 {
		t.Errorf("HumanTime = %v, want 30", rec.HumanTime)
	}
	want := time.Date(2024, 2, 10, 6, 30, 0, 0, time.UTC)
	if !rec.EntryDate.Equal(want) || rec.EntryDate.Location() != time.UTC {
		t.Errorf("EntryDate = %v, want %v in UTC", rec.EntryDate, want)
	}
	if rec.JobID != "job-1" {
		t.Errorf("JobID = %q, want %q", rec.JobID, "job-1")
	}
}

func TestToDomain_ProcessIDAlias(t *testing.T) {
	entry := time.Now()
	rec, err := Payload{ProcessID: "5", EntryDate: &entry}.ToDomain()
	if err != nil {
		t.Fatalf("ToDomain: %v", err)
	}
	if rec.ProcessID == nil || *rec.ProcessID != 5 {
		t.Errorf("ProcessID = %v, want 5", rec.ProcessID)
	}
}

func TestToDomain_UnresolvableRefIsNotAnError(t *testing.T) {
	entry := time.Now()
	rec, err := Payload{ProccesID: "not-a-number", EntryDate: &entry}.ToDomain()
	if err != nil {
		t.Fatalf("ToDomain: %v", err)
	}
	if rec.ProcessID != nil {
		t.Errorf("ProcessID = %d, want nil", *rec.ProcessID)
	}
	if rec.HumanTime != nil {
		t.Errorf("HumanTime = %d, want nil", *rec.HumanTime)
	}
}

func TestToDomain_NonCanonicalRefDoesNotResolve(t *testing.T) {
	entry := time.Now()
	for _, ref := range []string{"007", "+7", " 7 ", "7\n"} {
		t.Run(ref, func(t *testing.T) {
			rec, err := Payload{ProccesID: ref, EntryDate: &entry}.ToDomain()
			if err != nil {
				t.Fatalf("ToDomain: %v", err)
			}
			if rec.ProcessID != nil {
				t.Errorf("ProcessID = %d, want nil", *rec.ProcessID)
			}
		})
	}
}

func TestFromDomain_UnresolvableRefRendersEmpty(t *testing.T) {
	entry := time.Now()
	rec, err := Payload{ProccesID: "abc", EntryDate: &entry}.ToDomain()
	if err != nil {
		t.Fatalf("ToDomain: %v", err)
	}
	p := FromDomain(rec)
	if p.ProccesID != "" || p.ProcessID != "" {
		t.Errorf("refs = %q/%q, want empty", p.ProccesID, p.ProcessID)
	}
	out, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(out, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := m["proccesId"]; ok {
		t.Errorf("proccesId present in %s, want omitted", out)
	}
}

func TestToDomain_Invalid(t *testing.T) {
	if _, err := (Payload{}).ToDomain(); !errors.Is(err, ErrMissingEntryDate) {
		t.Errorf("missing entryDate: err = %v, want ErrMissingEntryDate", err)
	}
	entry := time.Now()
	neg := -1
	if _, err := (Payload{EntryDate: &entry, HumanTime: &neg}).ToDomain(); err == nil {
		t.Error("negative humanTime: want error")
	}
}

func TestFromDomain_RendersRef(t *testing.T) {
	entry := time.Now()
	rec, err := Payload{ProccesID: "9", EntryDate: &entry}.ToDomain()
	if err != nil {
		t.Fatalf("ToDomain: %v", err)
	}
	rec.ID = 3
	p := FromDomain(rec)
	if p.ProccesID != "9" || p.ProcessID != "9" {
		t.Errorf("refs = %q/%q, want 9/9", p.ProccesID, p.ProcessID)
	}
	if p.ID != 3 {
		t.Errorf("ID = %d, want 3", p.ID)
	}
}
