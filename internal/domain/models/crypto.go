package models

import "time"

// Crypto describes one of the supported cryptocurrencies. ID is the display
// name clients send in requests ("USD Coin"), File the history export name.
type Crypto struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Ticker string `json:"symbol"`
	File   string `json:"-"`
}

var cryptos = []Crypto{
	{ID: "Bitcoin", Name: "Bitcoin", Ticker: "BTC", File: "Bitcoin_data.csv"},
	{ID: "Ethereum", Name: "Ethereum", Ticker: "ETH", File: "Ethereum_data.csv"},
	{ID: "Tether", Name: "Tether", Ticker: "USDT", File: "Tether_data.csv"},
	{ID: "XRP", Name: "XRP", Ticker: "XRP", File: "XRP_data.csv"},
	{ID: "BNB", Name: "BNB", Ticker: "BNB", File: "BNB_data.csv"},
	{ID: "Solana", Name: "Solana", Ticker: "SOL", File: "Solana_data.csv"},
	{ID: "Dogecoin", Name: "Dogecoin", Ticker: "DOGE", File: "Dogecoin_data.csv"},
	{ID: "USD Coin", Name: "USD Coin", Ticker: "USDC", File: "USD_Coin_data.csv"},
	{ID: "TRON", Name: "TRON", Ticker: "TRX", File: "TRON_data.csv"},
	{ID: "Cardano", Name: "Cardano", Ticker: "ADA", File: "Cardano_data.csv"},
}

var cryptoByID = func() map[string]Crypto {
	m := make(map[string]Crypto, len(cryptos))
	for _, c := range cryptos {
		m[c.ID] = c
	}
	return m
}()

// Cryptos returns the supported cryptocurrencies in catalogue order.
func Cryptos() []Crypto {
	out := make([]Crypto, len(cryptos))
	copy(out, cryptos)
	return out
}

// LookupCrypto finds a crypto by its request identifier.
func LookupCrypto(id string) (Crypto, bool) {
	c, ok := cryptoByID[id]
	return c, ok
}

func IsKnownCrypto(id string) bool {
	_, ok := cryptoByID[id]
	return ok
}

// ClosePoint is one daily close of a price series.
type ClosePoint struct {
	Date  time.Time
	Close float64
}

// CryptoSeries is a date-ordered run of valid closes for one crypto.
type CryptoSeries struct {
	Crypto string
	Points []ClosePoint
}

// Closes returns the close values in series order.
func (s CryptoSeries) Closes() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Close
	}
	return out
}
