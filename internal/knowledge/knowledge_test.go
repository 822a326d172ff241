package knowledge

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dashfault/dashfault-backend/internal/platform/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("dev")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func writeTable(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "case_table.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write case table: %v", err)
	}
	return path
}

const sampleTable = `idx,place,place_feature,veh_a_dir,veh_b_dir,fault_a,fault_b,code,title,laws,precedents
1,intersection,T-intersection,go_straight,move_left,70,30,5,T-intersection – through vs. turning,Road Traffic Act art. 25,Supreme Court 2015Da12345
2,intersection,signalized,go_straight,go_straight,50,50,12,Signalized crossing collision,Road Traffic Act art. 5,Supreme Court 2018Da67890
3,highway,merge lane,go_straight,from_right,,40,13,Merge lane side swipe,Road Traffic Act art. 19,Supreme Court 2019Da11111
bad,row,with,too,few
4,intersection,unsignalized,go_straight,from_left,60,40,notanumber,Broken code row,none,none
`

func TestLoadParsesRowsAndSkipsMalformed(t *testing.T) {
	log := testLogger(t)
	path := writeTable(t, sampleTable)

	table, err := Load(path, log)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := table.Size(); got != 3 {
		t.Fatalf("expected 3 entries, got %d", got)
	}

	entry := table.Resolve(5)
	if entry.Title != "T-intersection – through vs. turning" {
		t.Errorf("unexpected title: %q", entry.Title)
	}
	if entry.FaultA != 70 || entry.FaultB != 30 {
		t.Errorf("unexpected fault ratios: %d/%d", entry.FaultA, entry.FaultB)
	}
	if entry.Laws == "" || entry.Precedents == "" {
		t.Errorf("expected laws and precedents to be populated")
	}
}

func TestLoadDefaultsUnparsableFaultToZero(t *testing.T) {
	log := testLogger(t)
	path := writeTable(t, sampleTable)

	table, err := Load(path, log)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	entry := table.Resolve(13)
	if entry.FaultA != 0 {
		t.Errorf("expected empty fault cell to default to 0, got %d", entry.FaultA)
	}
	if entry.FaultB != 40 {
		t.Errorf("expected fault_b 40, got %d", entry.FaultB)
	}
}

func TestResolveUnknownCodeReturnsSentinel(t *testing.T) {
	log := testLogger(t)
	path := writeTable(t, sampleTable)

	table, err := Load(path, log)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	entry := table.Resolve(999)
	if entry.Code != 999 {
		t.Errorf("sentinel should echo the code, got %d", entry.Code)
	}
	if entry.Title != "Unclassified accident type" {
		t.Errorf("unexpected sentinel title: %q", entry.Title)
	}
	if entry.FaultA != 0 || entry.FaultB != 0 {
		t.Errorf("sentinel fault ratios should be zero")
	}
}

func TestLoadFailsOnMissingFile(t *testing.T) {
	log := testLogger(t)
	if _, err := Load(filepath.Join(t.TempDir(), "missing.csv"), log); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadFailsOnEmptyTable(t *testing.T) {
	log := testLogger(t)
	path := writeTable(t, "idx,place,place_feature,veh_a_dir,veh_b_dir,fault_a,fault_b,code,title,laws,precedents\n")
	if _, err := Load(path, log); err == nil {
		t.Fatal("expected error for table with no usable rows")
	}
}
