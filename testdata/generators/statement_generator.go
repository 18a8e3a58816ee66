// Command statement_generator writes synthetic bank statement files for
// exercising the extractors by hand.
//
// Usage:
//
//	go run testdata/generators/statement_generator.go \
//	  -output statement.csv -count 200 -scenario messy -seed 42
//
// Scenarios:
//   - clean: well-formed rows only
//   - messy: interleaved blank lines, header noise, and malformed rows
//   - large: clean rows at 10x the requested count
//
// Formats:
//   - csv: generic Date,Description,Debit,Credit,Balance export
//   - kuda: plain-text app export (ISO dates, signed amounts)
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// StatementGenerator generates synthetic statement files
type StatementGenerator struct {
	Count     int
	StartDate time.Time
	EndDate   time.Time
	MinAmount decimal.Decimal
	MaxAmount decimal.Decimal
	Scenario  string
	Format    string
	Seed      int64

	rng *rand.Rand
}

// Row is one synthetic statement line before formatting
type Row struct {
	Date        time.Time
	Description string
	Amount      decimal.Decimal
	IsDebit     bool
	Balance     decimal.Decimal
}

// Description fragments assembled into statement narrations. Shaped after
// real Nigerian statement exports: POS/transfer/USSD prefixes plus common
// merchants.
var descriptionPrefixes = []string{
	"POS PURCHASE",
	"WEB PAYMENT",
	"TRANSFER TO",
	"TRANSFER FROM",
	"USSD AIRTIME",
	"ATM WITHDRAWAL",
	"DIRECT DEBIT",
	"STANDING ORDER",
}

var merchants = []string{
	"SHOPRITE IKEJA",
	"MTN NIGERIA",
	"DSTV SUBSCRIPTION",
	"NETFLIX.COM",
	"UBER TRIP LAGOS",
	"JUMIA FOOD",
	"TOTAL ENERGIES FILLING STATION",
	"MEDPLUS PHARMACY",
	"CHICKEN REPUBLIC VI",
	"BOLT RIDE",
	"PIGGYVEST SAVINGS",
	"IKEDC PREPAID",
	"GLO DATA BUNDLE",
	"FILMHOUSE CINEMAS",
	"ADEBAYO JOHN",
	"CHINEDU OKAFOR",
}

var creditDescriptions = []string{
	"SALARY PAYMENT",
	"TRANSFER FROM ADEBAYO JOHN",
	"NIP CREDIT FUNKE ADEYEMI",
	"REVERSAL POS PURCHASE",
	"INTEREST CAPITALIZATION",
	"CASH DEPOSIT",
}

func main() {
	var (
		output    = flag.String("output", "generated_statement.csv", "Output file path")
		count     = flag.Int("count", 200, "Number of transactions to generate")
		startDate = flag.String("start-date", "2024-01-01", "Start date (YYYY-MM-DD)")
		endDate   = flag.String("end-date", "2024-03-31", "End date (YYYY-MM-DD)")
		minAmount = flag.Float64("min-amount", 100.00, "Minimum transaction amount")
		maxAmount = flag.Float64("max-amount", 250000.00, "Maximum transaction amount")
		scenario  = flag.String("scenario", "clean", "Scenario: clean, messy, large")
		format    = flag.String("format", "csv", "Output format: csv, kuda")
		seed      = flag.Int64("seed", time.Now().UnixNano(), "Random seed for reproducible generation")
	)
	flag.Parse()

	start, err := time.Parse("2006-01-02", *startDate)
	if err != nil {
		log.Fatalf("Invalid start date: %v", err)
	}

	end, err := time.Parse("2006-01-02", *endDate)
	if err != nil {
		log.Fatalf("Invalid end date: %v", err)
	}
	if !end.After(start) {
		log.Fatal("end date must be after start date")
	}

	generator := &StatementGenerator{
		Count:     *count,
		StartDate: start,
		EndDate:   end,
		MinAmount: decimal.NewFromFloat(*minAmount),
		MaxAmount: decimal.NewFromFloat(*maxAmount),
		Scenario:  *scenario,
		Format:    *format,
		Seed:      *seed,
		rng:       rand.New(rand.NewSource(*seed)),
	}

	rows := generator.Generate()

	switch *format {
	case "csv":
		err = generator.WriteCSV(*output, rows)
	case "kuda":
		err = generator.WriteKudaText(*output, rows)
	default:
		log.Fatalf("Unknown format: %s", *format)
	}
	if err != nil {
		log.Fatalf("Failed to write output: %v", err)
	}

	fmt.Printf("Generated %d transactions in %s\n", len(rows), *output)
	fmt.Printf("Scenario: %s, format: %s\n", *scenario, *format)
	fmt.Printf("Date range: %s to %s\n", start.Format("2006-01-02"), end.Format("2006-01-02"))
	fmt.Printf("Seed used: %d\n", *seed)
}

// Generate produces date-ordered rows with a running balance.
func (sg *StatementGenerator) Generate() []Row {
	count := sg.Count
	if sg.Scenario == "large" {
		count = sg.Count * 10
	}

	duration := sg.EndDate.Sub(sg.StartDate)
	balance := decimal.NewFromInt(500000)

	rows := make([]Row, 0, count)
	for i := 0; i < count; i++ {
		// Dates advance monotonically so the running balance is coherent.
		offset := time.Duration(int64(duration) * int64(i) / int64(count))
		date := sg.StartDate.Add(offset)

		isDebit := sg.rng.Float64() < 0.75 // statements skew toward spending
		amount := sg.randomAmount()

		// Keep the running balance non-negative; overdrawn synthetic
		// accounts break the per-dialect balance grammars.
		if isDebit && balance.LessThan(amount) {
			isDebit = false
		}

		if isDebit {
			balance = balance.Sub(amount)
		} else {
			balance = balance.Add(amount)
		}

		rows = append(rows, Row{
			Date:        date,
			Description: sg.description(isDebit),
			Amount:      amount,
			IsDebit:     isDebit,
			Balance:     balance,
		})
	}

	return rows
}

func (sg *StatementGenerator) randomAmount() decimal.Decimal {
	amountRange := sg.MaxAmount.Sub(sg.MinAmount)
	amount := decimal.NewFromFloat(sg.rng.Float64()).Mul(amountRange).Add(sg.MinAmount)
	return amount.Round(2)
}

func (sg *StatementGenerator) description(isDebit bool) string {
	if !isDebit {
		return creditDescriptions[sg.rng.Intn(len(creditDescriptions))]
	}
	prefix := descriptionPrefixes[sg.rng.Intn(len(descriptionPrefixes))]
	merchant := merchants[sg.rng.Intn(len(merchants))]
	return fmt.Sprintf("%s %s", prefix, merchant)
}

// WriteCSV writes a generic Date,Description,Debit,Credit,Balance export.
func (sg *StatementGenerator) WriteCSV(filename string, rows []Row) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"Date", "Description", "Debit", "Credit", "Balance"}); err != nil {
		return err
	}

	for i, row := range rows {
		if sg.Scenario == "messy" && sg.shouldCorrupt(i) {
			if err := sg.writeMessyCSVRow(writer, i); err != nil {
				return err
			}
			continue
		}

		debit, credit := "", ""
		if row.IsDebit {
			debit = row.Amount.StringFixed(2)
		} else {
			credit = row.Amount.StringFixed(2)
		}

		record := []string{
			row.Date.Format("02/01/2006"),
			row.Description,
			debit,
			credit,
			row.Balance.StringFixed(2),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return nil
}

// shouldCorrupt marks roughly one in eight rows for corruption.
func (sg *StatementGenerator) shouldCorrupt(i int) bool {
	return i%8 == 3
}

// writeMessyCSVRow writes one deliberately broken row. The variants cover
// the drop paths: bad date, empty description, unparseable amount.
func (sg *StatementGenerator) writeMessyCSVRow(writer *csv.Writer, i int) error {
	switch i % 3 {
	case 0:
		return writer.Write([]string{"31/31/2024", "BROKEN DATE ROW", "100.00", "", "0.00"})
	case 1:
		return writer.Write([]string{"15/01/2024", "", "100.00", "", "0.00"})
	default:
		return writer.Write([]string{"15/01/2024", "BROKEN AMOUNT ROW", "not-a-number", "", "0.00"})
	}
}

// WriteKudaText writes a plain-text export in the app style: ISO date,
// narration, signed amount, optional reference.
func (sg *StatementGenerator) WriteKudaText(filename string, rows []Row) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	var b strings.Builder
	b.WriteString("Kuda Microfinance Bank\n")
	b.WriteString("Transaction History\n\n")

	for i, row := range rows {
		if sg.Scenario == "messy" && sg.shouldCorrupt(i) {
			b.WriteString("--- page break ---\n")
			continue
		}

		sign := "-"
		if !row.IsDebit {
			sign = "+"
		}
		b.WriteString(fmt.Sprintf("%s %s %s%s %s ref:KD%06d\n",
			row.Date.Format("2006-01-02"),
			row.Description,
			sign,
			row.Amount.StringFixed(2),
			row.Balance.StringFixed(2),
			i+1))
	}

	b.WriteString("\nEnd of statement\n")
	_, err = file.WriteString(b.String())
	return err
}
