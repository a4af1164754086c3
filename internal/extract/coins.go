package extract

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"
)

// defaultCoins is the built-in ticker allow-list. Covers the symbols that
// show up in trading screenshots from the major venues; extendable through
// a coin list file.
var defaultCoins = []string{
	"BTC", "ETH", "SOL", "BNB", "XRP", "ADA", "DOGE", "AVAX", "DOT",
	"LINK", "MATIC", "LTC", "UNI", "ATOM", "XLM", "NEAR", "APT", "ARB",
	"OP", "INJ", "SUI", "SEI", "TIA", "TON", "TRX", "FIL", "AAVE", "GRT",
	"ALGO", "FTM", "SAND", "MANA", "AXS", "RUNE", "KAS", "RENDER", "IMX",
	"PEPE", "SHIB", "WIF", "BONK", "FLOKI", "JUP", "PYTH", "EPIC", "HBAR",
	"COOK", "TAO", "ZORA", "ONDO", "ENA", "JTO", "DYM", "STRK",
}

// LoadCoinFile reads a ticker allow-list file: one symbol per line, blank
// lines and lines starting with # ignored. Symbols are upper-cased.
func LoadCoinFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open coin list: %w", err)
	}
	defer f.Close()

	var coins []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		coins = append(coins, strings.ToUpper(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read coin list: %w", err)
	}
	return coins, nil
}

// normalizeCoins dedupes and sorts the list so fuzzy lookups are
// deterministic.
func normalizeCoins(coins []string) (map[string]struct{}, []string) {
	set := make(map[string]struct{}, len(coins))
	for _, c := range coins {
		c = strings.ToUpper(strings.TrimSpace(c))
		if c != "" {
			set[c] = struct{}{}
		}
	}
	list := make([]string, 0, len(set))
	for c := range set {
		list = append(list, c)
	}
	sort.Strings(list)
	return set, list
}
