package core

import (
	"errors"
	"testing"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

func TestInteractionMUS_RoundTrip(t *testing.T) {
	in := Interaction{
		Id:        3,
		Query:     "what is ebitda",
		Sources:   []string{"faq#ebitda"},
		Score:     0.75,
		Matched:   true,
		Timestamp: time.Now().UTC().Truncate(time.Microsecond),
	}
	bs := make([]byte, InteractionMUS.Size(in))
	InteractionMUS.Marshal(in, bs)

	out, n, err := InteractionMUS.Unmarshal(bs)
	if err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if n != len(bs) {
		t.Errorf("Unmarshal() read %d bytes, want %d", n, len(bs))
	}
	if out.Query != in.Query || len(out.Sources) != 1 || out.Sources[0] != "faq#ebitda" || !out.Timestamp.Equal(in.Timestamp) {
		t.Errorf("Unmarshal() = %+v, want %+v", out, in)
	}
}

func TestInteractionMUS_SourceCountBounds(t *testing.T) {
	tests := []struct {
		name    string
		count   int
		wantErr error
	}{
		{"count beyond input", 1 << 40, errLengthOutOfRange},
		{"count one past input", 2, errLengthOutOfRange},
		{"negative count", -1, errNegativeLength},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bs := make([]byte, 64)
			n := IDMUS.Marshal(1, bs)
			n += ord.String.Marshal("q", bs[n:])
			n += varint.Int.Marshal(tt.count, bs[n:])
			bs[n] = 0 // one byte left after the count
			n++

			_, _, err := InteractionMUS.Unmarshal(bs[:n])
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Unmarshal() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
