package universe

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

const (
	holdingsHeaderMarker = "Ticker,Name,"
	equityAssetClass     = "Equity"
)

// FilterHoldingsCSV extracts equity tickers from a fund holdings export.
// Leading preamble lines are skipped up to the header containing
// "Ticker,Name,"; rows whose "Asset Class" is not Equity are dropped.
func FilterHoldingsCSV(r io.Reader) ([]string, error) {
	br := bufio.NewReader(r)

	var header string
	for {
		line, err := br.ReadString('\n')
		if strings.Contains(line, holdingsHeaderMarker) {
			header = line
			break
		}
		if err == io.EOF {
			return nil, fmt.Errorf("holdings header %q not found", holdingsHeaderMarker)
		}
		if err != nil {
			return nil, fmt.Errorf("read holdings: %w", err)
		}
	}

	// 헤더 줄부터 다시 합쳐서 CSV로 파싱
	reader := csv.NewReader(io.MultiReader(strings.NewReader(header), br))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	columns, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read holdings header: %w", err)
	}

	tickerCol, classCol := -1, -1
	for i, c := range columns {
		switch strings.TrimSpace(strings.TrimPrefix(c, "\ufeff")) {
		case "Ticker":
			tickerCol = i
		case "Asset Class":
			classCol = i
		}
	}
	if tickerCol < 0 || classCol < 0 {
		return nil, fmt.Errorf("holdings header missing Ticker or Asset Class column")
	}

	tickers := []string{}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read holdings row: %w", err)
		}
		if len(record) <= tickerCol || len(record) <= classCol {
			continue // 꼬리말 등 짧은 행
		}
		if strings.TrimSpace(record[classCol]) != equityAssetClass {
			continue
		}
		if t := strings.TrimSpace(record[tickerCol]); t != "" {
			tickers = append(tickers, t)
		}
	}

	return tickers, nil
}
