package models

import "testing"

func TestCatalogueSizes(t *testing.T) {
	if n := len(Cryptos()); n != 10 {
		t.Fatalf("expected 10 cryptos, got %d", n)
	}
	if n := len(Models()); n != 7 {
		t.Fatalf("expected 7 models, got %d", n)
	}
}

func TestLookupCrypto(t *testing.T) {
	c, ok := LookupCrypto("USD Coin")
	if !ok || c.File != "USD_Coin_data.csv" || c.Ticker != "USDC" {
		t.Fatalf("unexpected lookup result %+v ok=%v", c, ok)
	}
	if IsKnownCrypto("bitcoin") {
		t.Fatalf("lookup must be case-sensitive")
	}
}

func TestModelKinds(t *testing.T) {
	tabular := 0
	for _, m := range Models() {
		if m.Kind == KindTabular {
			tabular++
		}
	}
	if tabular != 3 {
		t.Fatalf("expected 3 tabular models, got %d", tabular)
	}
	if !IsKnownModel("cnn_bilstm") || IsKnownModel("transformer") {
		t.Fatalf("unexpected model lookup results")
	}
}

func TestHorizonOrDefault(t *testing.T) {
	if (PredictRequest{}).HorizonOrDefault() != 1 {
		t.Fatalf("expected default horizon 1")
	}
	h := 4
	if (PredictRequest{Horizon: &h}).HorizonOrDefault() != 4 {
		t.Fatalf("expected horizon 4")
	}
}
