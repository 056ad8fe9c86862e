package notify

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/weforyou/ledger/internal/domain"
)

func TestChannelFor(t *testing.T) {
	tests := []struct {
		name        string
		to          Recipient
		wantChannel string
	}{
		{name: "phone first", to: Recipient{Phone: "+919800000000", Email: "a@b.c"}, wantChannel: "sms"},
		{name: "email", to: Recipient{Email: "a@b.c"}, wantChannel: "email"},
		{name: "nothing", to: Recipient{Email: "not-an-email"}, wantChannel: ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got, _ := channelFor(tc.to); got != tc.wantChannel {
				t.Fatalf("channelFor() = %q, want %q", got, tc.wantChannel)
			}
		})
	}
}

func TestDonationSettledLogsMessage(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier(zerolog.New(&buf), "WeForYou Foundation")
	d := domain.Donation{ID: "d-1", Amount: domain.Money(100000), CampaignTitle: "Flood relief", ReceiptNumber: "WFY202400001"}

	if err := n.DonationSettled(context.Background(), Recipient{Email: "asha@example.org"}, d); err != nil {
		t.Fatalf("DonationSettled() error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{`"channel":"email"`, "Flood relief", "WFY202400001", `"related_to":"d-1"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("log line missing %q: %s", want, out)
		}
	}
}
