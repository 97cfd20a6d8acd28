package broker

import (
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
)

func TestRetryCountFrom(t *testing.T) {
	cases := []struct {
		name    string
		headers amqp.Table
		want    int
	}{
		{"missing header", amqp.Table{}, 0},
		{"nil table", nil, 0},
		{"int32", amqp.Table{RetryCountHeader: int32(2)}, 2},
		{"int64", amqp.Table{RetryCountHeader: int64(3)}, 3},
		{"int", amqp.Table{RetryCountHeader: 1}, 1},
		{"float64", amqp.Table{RetryCountHeader: float64(4)}, 4},
		{"unexpected type", amqp.Table{RetryCountHeader: "7"}, 0},
	}
	for _, tc := range cases {
		if got := retryCountFrom(tc.headers); got != tc.want {
			t.Errorf("%s: got %d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestDeliveryAck(t *testing.T) {
	// ack 为空时是空操作
	d := NewDelivery(nil, 0, nil)
	if err := d.Ack(); err != nil {
		t.Fatalf("nil ack must be a no-op, got %v", err)
	}

	acked := 0
	d = NewDelivery([]byte("x"), 1, func() error {
		acked++
		return nil
	})
	if err := d.Ack(); err != nil || acked != 1 {
		t.Fatalf("ack must call through, err=%v acked=%d", err, acked)
	}

	wantErr := errors.New("channel gone")
	d = NewDelivery(nil, 0, func() error { return wantErr })
	if err := d.Ack(); !errors.Is(err, wantErr) {
		t.Fatalf("ack error must propagate, got %v", err)
	}
}
