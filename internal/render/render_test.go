package render_test

import (
	"bytes"
	"encoding/csv"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"arrimeta/internal/metadata"
	"arrimeta/internal/render"
)

func clip(pairs ...any) *metadata.Metadata {
	b := metadata.NewBuilder(len(pairs) / 2)
	for i := 0; i < len(pairs); i += 2 {
		b.Set(pairs[i].(string), pairs[i+1].(metadata.Value))
	}
	return b.Metadata()
}

func TestParseFormat(t *testing.T) {
	for _, in := range []string{"json", " CSV ", "tsv", "Table", "XLSX"} {
		if _, err := render.ParseFormat(in); err != nil {
			t.Fatalf("ParseFormat(%q): %v", in, err)
		}
	}
	if _, err := render.ParseFormat("xml"); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestRecordAndJSON(t *testing.T) {
	m := clip("ImageWidth", metadata.Uint(1920), "Reel", metadata.String("A001"), "CDLSlope", metadata.Tuple(1, 0.5, 1))
	entries := render.Record(m)
	if len(entries) != 3 || entries[0].Name != "ImageWidth" || entries[2].Name != "CDLSlope" {
		t.Fatalf("unexpected entries %+v", entries)
	}

	var buf bytes.Buffer
	if err := render.JSON(&buf, m); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	want := "{\n  \"ImageWidth\": 1920,\n  \"Reel\": \"A001\",\n  \"CDLSlope\": [\n    1.0,\n    0.5,\n    1.0\n  ]\n}\n"
	if buf.String() != want {
		t.Fatalf("JSON =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestTableUnionsColumnsInFirstSeenOrder(t *testing.T) {
	tbl := render.NewTable()
	tbl.Add("/clips/A001C001.ari", "A001C001", clip("Reel", metadata.String("A001"), "ImageWidth", metadata.Uint(3840)))
	tbl.Add("/clips/A001C002.ari", "A001C002", clip("ImageWidth", metadata.Uint(1920), "LensModel", metadata.String("Ultra Prime")))

	cols := tbl.Columns()
	if strings.Join(cols, ",") != "Reel,ImageWidth,LensModel" {
		t.Fatalf("Columns = %v", cols)
	}
	rows := tbl.Rows()
	if len(rows) != 2 {
		t.Fatalf("Rows = %v", rows)
	}
	if strings.Join(rows[1], "|") != "A001C002||1920|Ultra Prime" {
		t.Fatalf("second row = %v", rows[1])
	}

	tbl.Add("/clips/A001C001.ari", "A001C001", clip("Reel", metadata.String("A002")))
	if tbl.Len() != 2 || tbl.Rows()[0][1] != "A002" {
		t.Fatalf("re-adding a path must replace its row, got %v", tbl.Rows())
	}
}

func TestTableRendersDelimited(t *testing.T) {
	tbl := render.NewTable()
	tbl.Add("clip,1.ari", "clip,1", clip("Scene", metadata.String("12"), "SensorFPS", metadata.Float(23.976)))

	var buf bytes.Buffer
	if err := tbl.Render(&buf, render.FormatCSV); err != nil {
		t.Fatalf("Render csv: %v", err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back csv: %v", err)
	}
	if len(records) != 2 || records[0][0] != render.ClipColumn || records[1][0] != "clip,1" || records[1][2] != "23.976" {
		t.Fatalf("unexpected csv %v", records)
	}

	buf.Reset()
	if err := tbl.Render(&buf, render.FormatTSV); err != nil {
		t.Fatalf("Render tsv: %v", err)
	}
	if first, _, _ := strings.Cut(buf.String(), "\n"); first != "Clip\tScene\tSensorFPS" {
		t.Fatalf("tsv header = %q", first)
	}
}

func TestTableRendersJSONKeyedByClip(t *testing.T) {
	tbl := render.NewTable()
	tbl.Add("B.ari", "B", clip("Take", metadata.String("3")))
	tbl.Add("A.ari", "A", clip("Take", metadata.String("1")))

	var buf bytes.Buffer
	if err := tbl.Render(&buf, render.FormatJSON); err != nil {
		t.Fatalf("Render json: %v", err)
	}
	out := buf.String()
	if strings.Index(out, "\"B\"") > strings.Index(out, "\"A\"") {
		t.Fatalf("clips must keep insertion order:\n%s", out)
	}
	if !strings.Contains(out, "\"Take\": \"3\"") {
		t.Fatalf("missing nested field:\n%s", out)
	}
}

func TestTableRendersPretty(t *testing.T) {
	tbl := render.NewTable()
	tbl.Add("A001C001.ari", "A001C001", clip("ImageWidth", metadata.Uint(3840), "Reel", metadata.String("A001")))

	var buf bytes.Buffer
	if err := tbl.Render(&buf, render.FormatTable); err != nil {
		t.Fatalf("Render table: %v", err)
	}
	if !strings.Contains(buf.String(), "Field") || !strings.Contains(buf.String(), "3840") {
		t.Fatalf("single clip should render as a field/value table:\n%s", buf.String())
	}

	tbl.Add("A001C002.ari", "A001C002", clip("ImageWidth", metadata.Uint(1920)))
	buf.Reset()
	if err := tbl.Render(&buf, render.FormatTable); err != nil {
		t.Fatalf("Render table: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Clip", "ImageWidth", "A001C002", "1920"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in\n%s", want, out)
		}
	}
}

func TestTableKeepsFilesThatShareAClipName(t *testing.T) {
	root := t.TempDir()
	tbl := render.NewTable()
	tbl.Add(filepath.Join(root, "cardA", "frame.ari"), "frame", clip("Reel", metadata.String("A001")))
	tbl.Add(filepath.Join(root, "cardB", "frame.ari"), "frame", clip("Reel", metadata.String("B002")))
	tbl.Add(filepath.Join(root, "cardB", "other.ari"), "other", clip("Reel", metadata.String("B002")))

	if tbl.Len() != 3 {
		t.Fatalf("Len = %d, want 3", tbl.Len())
	}
	var labels []string
	for _, c := range tbl.Clips() {
		labels = append(labels, c.Label)
	}
	if strings.Join(labels, ",") != "cardA/frame,cardB/frame,other" {
		t.Fatalf("labels = %v", labels)
	}

	var buf bytes.Buffer
	if err := tbl.Render(&buf, render.FormatCSV); err != nil {
		t.Fatalf("Render csv: %v", err)
	}
	for _, want := range []string{"cardA/frame,A001", "cardB/frame,B002"} {
		if !strings.Contains(buf.String(), want) {
			t.Fatalf("expected %q in\n%s", want, buf.String())
		}
	}
}

func TestTableRendersXLSXLikeCSV(t *testing.T) {
	tbl := render.NewTable()
	tbl.Add("A001C001.ari", "A001C001", clip("Reel", metadata.String("A001"), "ImageWidth", metadata.Uint(3840)))
	tbl.Add("A001C002.ari", "A001C002", clip("SensorFPS", metadata.Float(23.976)))

	var buf bytes.Buffer
	if err := tbl.Render(&buf, render.FormatXLSX); err != nil {
		t.Fatalf("Render xlsx: %v", err)
	}
	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %v", rows)
	}
	if strings.Join(rows[0], ",") != "Clip,Reel,ImageWidth,SensorFPS" {
		t.Fatalf("header = %v", rows[0])
	}
	if len(rows[1]) < 3 || strings.Join(rows[1][:3], ",") != "A001C001,A001,3840" {
		t.Fatalf("first row = %v", rows[1])
	}
	if len(rows[2]) != 4 || rows[2][0] != "A001C002" || rows[2][3] != "23.976" {
		t.Fatalf("second row = %v", rows[2])
	}
	cellType, err := f.GetCellType(f.GetSheetName(0), "C2")
	if err != nil {
		t.Fatalf("GetCellType: %v", err)
	}
	if cellType == excelize.CellTypeSharedString || cellType == excelize.CellTypeInlineString {
		t.Fatalf("numeric field stored as text")
	}
}
