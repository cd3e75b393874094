package pacifica

import "testing"

func TestBookOnMessageParsesMatchingSymbol(t *testing.T) {
	t.Parallel()

	onMessage := BookOnMessage("SOL")
	bid, ask, ok := onMessage([]byte(`{"symbol":"SOL","bid":100.1,"ask":100.3}`))
	if !ok || bid != 100.1 || ask != 100.3 {
		t.Fatalf("got (%v, %v, %v), want (100.1, 100.3, true)", bid, ask, ok)
	}
}

func TestBookOnMessageRejectsOtherSymbol(t *testing.T) {
	t.Parallel()

	onMessage := BookOnMessage("SOL")
	if _, _, ok := onMessage([]byte(`{"symbol":"BTC","bid":1,"ask":2}`)); ok {
		t.Fatal("expected a different symbol's update to be rejected")
	}
}

func TestBookOnMessageRejectsMalformedOrZeroPrices(t *testing.T) {
	t.Parallel()

	onMessage := BookOnMessage("SOL")
	if _, _, ok := onMessage([]byte(`not json`)); ok {
		t.Fatal("expected malformed payload to be rejected")
	}
	if _, _, ok := onMessage([]byte(`{"symbol":"SOL","bid":0,"ask":0}`)); ok {
		t.Fatal("expected zero prices to be rejected")
	}
}
