// Command ouiimport loads an OUI CSV export (maclookup.app format:
// "Mac Prefix,Vendor Name,Private,Block Type,Last Update") into the local
// sqlite registry used by the vendor lookup chain.
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"io"
	"log"
	"os"
	"strings"

	"github.com/netscenehq/netscene/internal/adapters/oui"
)

const batchSize = 1000

func main() {
	csvPath := flag.String("csv", "oui.csv", "Path to the OUI CSV export")
	dbPath := flag.String("db", "oui.db", "Path to the OUI registry database")
	verbose := flag.Bool("verbose", false, "Verbose output")
	flag.Parse()

	f, err := os.Open(*csvPath)
	if err != nil {
		log.Fatalf("Failed to open CSV: %v", err)
	}
	defer f.Close()

	db, err := oui.NewDBProvider(*dbPath, batchSize)
	if err != nil {
		log.Fatalf("Failed to open registry: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	reader := csv.NewReader(f)
	if _, err := reader.Read(); err != nil { // header
		log.Fatalf("Failed to read header: %v", err)
	}

	var batch []oui.Entry
	imported := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			log.Printf("Warning: skipping malformed line: %v", err)
			continue
		}
		if len(record) < 2 {
			continue
		}

		prefix := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(record[0]), "-", ":"))
		vendor := strings.TrimSpace(record[1])
		if prefix == "" || vendor == "" {
			continue
		}

		batch = append(batch, oui.Entry{
			Prefix:      prefix,
			Vendor:      vendor,
			VendorShort: shortVendor(vendor),
		})
		if len(batch) >= batchSize {
			if err := db.BulkInsert(ctx, batch); err != nil {
				log.Fatalf("Bulk insert failed: %v", err)
			}
			imported += len(batch)
			if *verbose {
				log.Printf("  imported %d entries...", imported)
			}
			batch = batch[:0]
		}
	}
	if len(batch) > 0 {
		if err := db.BulkInsert(ctx, batch); err != nil {
			log.Fatalf("Bulk insert failed: %v", err)
		}
		imported += len(batch)
	}

	total, err := db.Count(ctx)
	if err != nil {
		log.Fatalf("Failed to count registry: %v", err)
	}
	log.Printf("Import complete: %d rows written, registry holds %d prefixes", imported, total)
}

// shortVendor strips legal suffixes so lookups return a display-friendly
// name.
func shortVendor(vendor string) string {
	v := strings.TrimSpace(vendor)
	for _, suffix := range []string{
		" Inc.", " Inc", " Corporation", " Corp.", " Corp", " Ltd.", " Ltd",
		" Limited", " Co., Ltd.", " Co.", " LLC", " GmbH", " S.A.", " AG",
	} {
		v = strings.TrimSuffix(v, suffix)
	}
	if idx := strings.Index(v, ","); idx > 0 {
		v = v[:idx]
	}
	return strings.TrimSpace(v)
}
