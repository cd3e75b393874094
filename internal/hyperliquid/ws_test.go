package hyperliquid

import "testing"

func TestBookOnMessageParsesL2Frame(t *testing.T) {
	t.Parallel()

	onMessage := BookOnMessage()
	frame := `{"channel":"l2Book","data":{"levels":[[{"px":"100.10","sz":"5"}],[{"px":"100.30","sz":"3"}]]}}`
	bid, ask, ok := onMessage([]byte(frame))
	if !ok || bid != 100.10 || ask != 100.30 {
		t.Fatalf("got (%v, %v, %v), want (100.10, 100.30, true)", bid, ask, ok)
	}
}

func TestBookOnMessageRejectsOtherChannel(t *testing.T) {
	t.Parallel()

	onMessage := BookOnMessage()
	frame := `{"channel":"trades","data":{"levels":[]}}`
	if _, _, ok := onMessage([]byte(frame)); ok {
		t.Fatal("expected a non-l2Book channel to be rejected")
	}
}

func TestBookOnMessageRejectsEmptyLevels(t *testing.T) {
	t.Parallel()

	onMessage := BookOnMessage()
	frame := `{"channel":"l2Book","data":{"levels":[[],[]]}}`
	if _, _, ok := onMessage([]byte(frame)); ok {
		t.Fatal("expected empty levels to be rejected")
	}
}
