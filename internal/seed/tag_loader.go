package seed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"rfidledger/m/internal/ledger"
)

// LoadTags imports tag mappings from a CSV file with a
// cardHex,itemId,locationId header. Rows that fail validation are logged and
// skipped. It returns the number of mappings applied.
func LoadTags(l *ledger.Ledger, csvPath string, log *zap.Logger) (int, error) {
	file, err := os.Open(csvPath)
	if err != nil {
		return 0, fmt.Errorf("open tag mappings %s: %w", csvPath, err)
	}
	defer file.Close()
	return ImportTags(l, file, log)
}

// ImportTags reads mappings from r. See LoadTags.
func ImportTags(l *ledger.Ledger, r io.Reader, log *zap.Logger) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	// Skip header
	if _, err := reader.Read(); err != nil {
		return 0, fmt.Errorf("read tag mapping header: %w", err)
	}

	rows := 0
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			log.Warn("unable to read tag mapping row", zap.Int("line", line), zap.Error(err))
			continue
		}
		if len(record) < 3 {
			log.Warn("short tag mapping row", zap.Int("line", line))
			continue
		}
		cardHex := strings.TrimSpace(record[0])
		itemID := strings.TrimSpace(record[1])
		locationID := strings.TrimSpace(record[2])

		if _, _, err := l.SetMapping(cardHex, itemID, locationID); err != nil {
			log.Warn("skipping tag mapping", zap.Int("line", line), zap.String("card_hex", cardHex), zap.Error(err))
			continue
		}
		rows++
	}

	log.Info("imported tag mappings", zap.Int("rows", rows))
	return rows, nil
}
