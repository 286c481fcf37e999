package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

// fallbackUSDBRL is used when the exchange rate API is unreachable.
const fallbackUSDBRL = 6.00

// cheapSharkStores maps CheapShark store IDs to display names. Deals from
// stores outside this map are skipped.
var cheapSharkStores = map[string]string{
	"1":  "Steam",
	"7":  "GOG",
	"8":  "Origin/EA",
	"11": "Humble Store",
	"25": "Epic Games",
	"31": "Blizzard",
}

// CurrencyService fetches the USD to BRL rate with a 2 hour cache.
type CurrencyService struct {
	client *http.Client

	mu        sync.Mutex
	rate      float64
	fetchedAt time.Time
}

func NewCurrencyService() *CurrencyService {
	return &CurrencyService{client: &http.Client{Timeout: 10 * time.Second}}
}

// USDToBRL returns the current rate, the cached one, or the fallback.
func (c *CurrencyService) USDToBRL(ctx context.Context) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.rate > 0 && time.Since(c.fetchedAt) < 2*time.Hour {
		return c.rate
	}

	req, err := http.NewRequestWithContext(ctx, "GET", "https://economia.awesomeapi.com.br/last/USD-BRL", nil)
	if err != nil {
		return fallbackUSDBRL
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fallbackUSDBRL
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fallbackUSDBRL
	}

	var data map[string]struct {
		Bid string `json:"bid"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return fallbackUSDBRL
	}
	rate, err := strconv.ParseFloat(data["USDBRL"].Bid, 64)
	if err != nil || rate <= 0 {
		return fallbackUSDBRL
	}

	c.rate = rate
	c.fetchedAt = time.Now()
	return rate
}

// GamePriceService builds the game report: price comparison across stores
// via CheapShark, converted to BRL.
type GamePriceService struct {
	currency *CurrencyService
	client   *http.Client
}

func NewGamePriceService(currency *CurrencyService) *GamePriceService {
	return &GamePriceService{
		currency: currency,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

// NewGameSearchTool wraps the service as a registry tool.
func NewGameSearchTool(svc *GamePriceService) *Tool {
	return &Tool{
		Name:        "game_search",
		Description: "Busca preços e informações de jogos",
		Invoke: func(ctx context.Context, args string) (string, error) {
			return svc.SearchGame(ctx, args), nil
		},
	}
}

// SearchGame returns the full report for a game query.
func (g *GamePriceService) SearchGame(ctx context.Context, query string) string {
	report := fmt.Sprintf("🎮 **Relatório de Jogo: %s**\n", titleCase(query))
	report += "\n💸 **Comparativo de Preços (Estimado BRL):**\n"
	report += g.deals(ctx, query)
	return report
}

func (g *GamePriceService) deals(ctx context.Context, gameName string) string {
	reqURL := fmt.Sprintf("https://www.cheapshark.com/api/1.0/deals?title=%s&limit=10&exact=0", url.QueryEscape(gameName))
	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return fmt.Sprintf("Erro ao buscar preços: %v", err)
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Sprintf("Erro ao buscar preços: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "Nenhuma oferta encontrada."
	}

	var deals []struct {
		Title       string `json:"title"`
		StoreID     string `json:"storeID"`
		SalePrice   string `json:"salePrice"`
		NormalPrice string `json:"normalPrice"`
		Savings     string `json:"savings"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&deals); err != nil {
		return fmt.Sprintf("Erro ao buscar preços: %v", err)
	}
	if len(deals) == 0 {
		return "Nenhuma oferta encontrada."
	}

	usdRate := g.currency.USDToBRL(ctx)

	lines := []string{fmt.Sprintf("💵 **Cotação Dólar ref.:** R$%.2f\n", usdRate)}
	foundTitles := map[string]bool{}
	count := 0

	for _, deal := range deals {
		storeName, known := cheapSharkStores[deal.StoreID]
		if !known {
			continue
		}
		if foundTitles[deal.Title] && len(foundTitles) > 2 {
			continue
		}
		foundTitles[deal.Title] = true

		priceUSD, _ := strconv.ParseFloat(deal.SalePrice, 64)
		normalUSD, _ := strconv.ParseFloat(deal.NormalPrice, 64)
		savings, _ := strconv.ParseFloat(deal.Savings, 64)

		emoji := "🔵"
		if savings > 50 {
			emoji = "🟢"
		}
		lines = append(lines, fmt.Sprintf(
			"%s **%s** na **%s**\n   R$%.2f (Era ~R$%.2f) | -%d%% OFF",
			emoji, deal.Title, storeName, priceUSD*usdRate, normalUSD*usdRate, int(savings)))

		count++
		if count >= 5 {
			break
		}
	}

	if count == 0 {
		return "Nenhuma oferta encontrada."
	}
	return strings.Join(lines, "\n")
}

// titleCase uppercases the first letter of each space-separated word.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		r[0] = []rune(strings.ToUpper(string(r[0])))[0]
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
