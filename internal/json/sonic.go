package json

import (
	"io"

	"github.com/bytedance/sonic"
)

// init swaps the package default from encoding/json to sonic, matching the
// root antfly-go module's choice of JSON library for its hot paths. The
// research loop parses one LLM JSON object per step, so decode throughput
// matters more than stdlib drop-in compatibility.
func init() {
	SetConfig(Config{
		Marshal:       sonic.Marshal,
		MarshalIndent: sonic.MarshalIndent,
		MarshalString: func(v any) (string, error) {
			return sonic.MarshalString(v)
		},
		Unmarshal: sonic.Unmarshal,
		UnmarshalString: func(s string, v any) error {
			return sonic.UnmarshalString(s, v)
		},
		NewEncoder: func(w io.Writer) Encoder {
			return sonic.ConfigDefault.NewEncoder(w)
		},
		NewDecoder: func(r io.Reader) Decoder {
			return sonic.ConfigDefault.NewDecoder(r)
		},
	})
}
