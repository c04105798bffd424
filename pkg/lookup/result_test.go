package lookup

import "testing"

func TestResult_Payload(t *testing.T) {
	tests := []struct {
		name   string
		result Result
		want   string
	}{
		{
			name:   "success",
			result: newSuccess("X", 1700000000123456789, []byte(`{"result":"Item is in inventory."}`)),
			want:   `{"id":"X","timestamp":1700000000123456789,"status":200,"response":{"result":"Item is in inventory."}}`,
		},
		{
			name:   "not found",
			result: newFailure("abc", 5, 404),
			want:   `{"id":"abc","timestamp":5,"status":404,"response":null}`,
		},
		{
			name:   "transport failure",
			result: newFailure("abc", 5, 0),
			want:   `{"id":"abc","timestamp":5,"status":0,"response":null}`,
		},
		{
			name:   "rate limit exhausted",
			result: newFailure("abc", 7, 429),
			want:   `{"id":"abc","timestamp":7,"status":429,"response":null}`,
		},
		{
			name:   "body spliced unescaped",
			result: newSuccess("q\"d", 1, []byte("plain text\n")),
			want:   "{\"id\":\"q\"d\",\"timestamp\":1,\"status\":200,\"response\":plain text\n}",
		},
		{
			name:   "empty success body",
			result: newSuccess("e", 1, nil),
			want:   `{"id":"e","timestamp":1,"status":200,"response":}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.result.Payload(); got != tt.want {
				t.Errorf("Payload() = %q, want %q", got, tt.want)
			}
			if got := tt.result.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResult_AppendPayload(t *testing.T) {
	dst := []byte("prefix ")
	dst = newFailure("a", 1, 403).AppendPayload(dst)

	want := `prefix {"id":"a","timestamp":1,"status":403,"response":null}`
	if string(dst) != want {
		t.Errorf("AppendPayload() = %q, want %q", dst, want)
	}
}
