package export

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/Simplici0/spicebooks/internal/costing"
	"github.com/Simplici0/spicebooks/internal/ledger"
)

func febPodiSheet(t *testing.T) RegisterSheet {
	t.Helper()
	var l ledger.Ledger
	d1, _ := ledger.ParseDay("2024-02-01")
	d2, _ := ledger.ParseDay("2024-02-10")
	l, _ = ledger.AddEntry(l, ledger.RegisterPodi, "Putnalu Podi", ledger.Fields{Date: d1, Inbound: 50, Outbound: 10.04})
	l, _ = ledger.AddEntry(l, ledger.RegisterPodi, "Putnalu Podi", ledger.Fields{Date: d2, Opening: 39.96, Inbound: 20, Outbound: 15})
	entries := ledger.FilterByMonth(l, d1)
	return RegisterSheet{
		Register: ledger.RegisterPodi,
		Month:    "2024-02",
		Entries:  entries,
		Summary:  ledger.MonthlySummary(entries),
	}
}

func TestWriteRegisterCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteRegisterCSV(&buf, febPodiSheet(t)); err != nil {
		t.Fatalf("WriteRegisterCSV: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header, 2 rows and totals, got %d lines:\n%s", len(lines), buf.String())
	}
	if lines[0] != "Date,Item,Opening,Production,Sales,Wastage,Closing" {
		t.Fatalf("header = %q", lines[0])
	}
	if lines[1] != "2024-02-01,Putnalu Podi,0.0,50.0,10.0,0.0,40.0" {
		t.Fatalf("row 1 = %q", lines[1])
	}
	if lines[3] != "TOTAL,,40.0,70.0,25.0,0.0,84.9" {
		t.Fatalf("totals = %q", lines[3])
	}
}

func TestWriteRegisterCSVRawLabels(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteRegisterCSV(&buf, RegisterSheet{Register: ledger.RegisterRaw, Month: "2024-02"}); err != nil {
		t.Fatalf("WriteRegisterCSV: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "Date,Item,Opening,Purchase,Usage,Wastage,Closing\n") {
		t.Fatalf("unexpected header: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "TOTAL,,0.0,0.0,0.0,0.0,0.0") {
		t.Fatalf("empty month must still have a totals row: %q", buf.String())
	}
}

func TestWritePriceListCSV(t *testing.T) {
	rows := []costing.Breakdown{
		{RecipeName: "Sambar Powder", TotalIngredientCost: 95.8, Overheads: 90, FinalCost: 185.8, SellingPrice: 350, MarginPercent: 46.914285, HasMargin: true},
		{RecipeName: "Trial Podi"},
	}
	var buf bytes.Buffer
	if err := WritePriceListCSV(&buf, rows); err != nil {
		t.Fatalf("WritePriceListCSV: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if lines[1] != "Sambar Powder,95.80,90.00,185.80,350.00,46.91" {
		t.Fatalf("row = %q", lines[1])
	}
	if lines[2] != "Trial Podi,0.00,0.00,0.00,0.00," {
		t.Fatalf("row without margin = %q", lines[2])
	}
}

func TestRenderRegisterPrint(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderRegisterPrint(&buf, febPodiSheet(t), time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("RenderRegisterPrint: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Podi Stock Register", "2024-02", "Production", "Putnalu Podi", "84.9", "01 Mar 2024 09:00"} {
		if !strings.Contains(out, want) {
			t.Fatalf("print page missing %q", want)
		}
	}
}

type fakeS3 struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.input = in
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, nil
}

func TestUploadRegisterCSV(t *testing.T) {
	client := &fakeS3{}
	u := &Uploader{client: client, bucket: "spice-exports"}

	key, err := u.UploadRegisterCSV(context.Background(), febPodiSheet(t))
	if err != nil {
		t.Fatalf("UploadRegisterCSV: %v", err)
	}
	if !strings.HasPrefix(key, "registers/podi/2024-02/") || !strings.HasSuffix(key, ".csv") {
		t.Fatalf("key = %q", key)
	}
	if *client.input.Bucket != "spice-exports" || *client.input.Key != key {
		t.Fatalf("unexpected input: bucket=%s key=%s", *client.input.Bucket, *client.input.Key)
	}
	if !bytes.Contains(client.body, []byte("TOTAL")) {
		t.Fatalf("uploaded body missing totals: %s", client.body)
	}
}

func TestUploadRegisterCSVReportsFailure(t *testing.T) {
	u := &Uploader{client: &fakeS3{err: errors.New("access denied")}, bucket: "spice-exports"}
	if _, err := u.UploadRegisterCSV(context.Background(), febPodiSheet(t)); err == nil {
		t.Fatalf("expected upload error")
	}
}
