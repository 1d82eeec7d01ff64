package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestEnvelopeOK(t *testing.T) {
	var e Envelope[CompanyPage]
	if err := json.Unmarshal([]byte(`{"status":"success","data":{"companies":[],"total":0}}`), &e); err != nil {
		t.Fatal(err)
	}
	if !e.OK() {
		t.Fatal("status=success should be OK")
	}

	var failed Envelope[any]
	json.Unmarshal([]byte(`{"status":"success","success":false,"message":"nope"}`), &failed)
	if failed.OK() {
		t.Fatal("explicit success=false should win over status")
	}

	var errEnv Envelope[any]
	json.Unmarshal([]byte(`{"status":"error","message":"bad"}`), &errEnv)
	if errEnv.OK() {
		t.Fatal("status=error should not be OK")
	}
}

func TestContractDecodesNumericIDs(t *testing.T) {
	raw := `{"id":42,"fileId":"f1","companyId":7,"contractAmount":1000.5,"paidAmount":200,"updatedAt":"2024-05-01 10:00:00"}`
	var c Contract
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		t.Fatal(err)
	}
	if c.ID != "42" || c.CompanyID != "7" {
		t.Fatalf("ids = %q/%q, want 42/7", c.ID, c.CompanyID)
	}
	want := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	if !c.UpdatedAt.Equal(want) {
		t.Fatalf("UpdatedAt = %v, want %v", c.UpdatedAt.Time, want)
	}
	if c.Outstanding() != 800.5 {
		t.Fatalf("Outstanding() = %v, want 800.5", c.Outstanding())
	}
}

func TestTimestampTolerance(t *testing.T) {
	cases := map[string]bool{
		`"2024-01-02T03:04:05Z"`: true,
		`"2024-01-02T03:04:05"`:  true,
		`"2024-01-02"`:           true,
		`""`:                     false,
		`null`:                   false,
		`"garbage"`:              false,
	}
	for in, wantSet := range cases {
		var ts Timestamp
		if err := json.Unmarshal([]byte(in), &ts); err != nil {
			t.Fatalf("Unmarshal(%s) error: %v", in, err)
		}
		if ts.IsZero() == wantSet {
			t.Errorf("Unmarshal(%s) zero=%v, want set=%v", in, ts.IsZero(), wantSet)
		}
	}
}

func TestFileTypes(t *testing.T) {
	if !FileTypeContract.Accepts("Report.PDF") {
		t.Error("contract should accept .PDF case-insensitively")
	}
	if FileTypeContract.Accepts("photo.png") {
		t.Error("contract should not accept .png")
	}
	if !FileTypeDrawing.Accepts("plan.webp") {
		t.Error("drawing should accept .webp")
	}
	if got := FileTypeDrawing.Accept(); got != ".jpg,.jpeg,.png,.gif,.webp" {
		t.Errorf("Accept() = %q", got)
	}

	for in, want := range map[string]FileType{"1": FileTypeContract, "2": FileTypeDrawing, "contract": FileTypeContract, "图纸": FileTypeDrawing} {
		got, err := ParseFileType(in)
		if err != nil || got != want {
			t.Errorf("ParseFileType(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseFileType("3"); err == nil {
		t.Error("ParseFileType(3) should fail")
	}
}

func TestFileItemType(t *testing.T) {
	var f FileItem
	json.Unmarshal([]byte(`{"id":1,"fileType":2,"size":"1.2 MB"}`), &f)
	if f.Type() != FileTypeDrawing {
		t.Fatalf("Type() = %v, want drawing", f.Type())
	}
	if f.Size != "1.2 MB" {
		t.Fatalf("Size = %q", f.Size)
	}
}
