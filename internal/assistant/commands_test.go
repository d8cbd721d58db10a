package assistant

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func ptr[T any](v T) *T { return &v }

func TestExtract_Commands(t *testing.T) {
	tests := []struct {
		cat  Category
		raw  string
		want Command
	}{
		{
			cat: CategoryFeeding,
			raw: `{"action":"create_feeding_log","child_name":"Samar","amount":120,"type":"formula","time":"2025-03-01T12:00:00Z","notes":null}`,
			want: &FeedingCommand{
				Action: ActionCreateFeeding, ChildName: "Samar", Amount: ptr(120.0),
				Type: "FORMULA", Time: "2025-03-01T12:00:00Z",
			},
		},
		{
			cat: CategorySleep,
			raw: `{"action":"start_sleep","child_name":"Maryam","start_time":null,"end_time":null,"type":null,"quality":null,"notes":null}`,
			want: &SleepCommand{
				Action: ActionStartSleep, ChildName: "Maryam", Type: "NAP",
			},
		},
		{
			cat: CategoryDiaper,
			raw: `{"action":"create_diaper_log","child_name":"Samar","type":"Dirty","consistency":"watery","extra":"ignored"}`,
			want: &DiaperCommand{
				Action: ActionCreateDiaper, ChildName: "Samar", Type: "DIRTY", Consistency: "WATERY",
			},
		},
		{
			cat: CategoryHealth,
			raw: `{"action":"create_health_log","child_name":"Samar","type":"MEDICINE","value":"paracetamol 2.5","unit":"ml"}`,
			want: &HealthCommand{
				Action: ActionCreateHealth, ChildName: "Samar", Type: "MEDICINE", Value: "paracetamol 2.5", Unit: "ml",
			},
		},
		{
			cat: CategoryQuery,
			raw: `{"action":"query","query_type":" LAST_FEEDING ","child_name":"Maryam"}`,
			want: &QueryCommand{
				Action: ActionQuery, QueryType: QueryLastFeeding, ChildName: "Maryam", Details: map[string]any{},
			},
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.cat), func(t *testing.T) {
			ext := &extractor{ai: &fakeAI{extraction: tt.raw}, log: zap.NewNop()}

			got, err := ext.extract(context.Background(), tt.cat, "msg", "Samar and Maryam", testNow)
			require.NoError(t, err)
			assert.Equal(t, tt.cat, got.Intent())
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("command mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExtract_ErrorKinds(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		kind Kind
	}{
		{"prose only", "no idea", KindExtractionParse},
		{"broken object", `{"action": create_feeding_log}`, KindExtractionParse},
		{"literal null", "null", KindExtractionParse},
		{"bad enum", `{"action":"create_feeding_log","child_name":"Samar","type":"SOUP"}`, KindExtractionValidation},
		{"negative amount", `{"action":"create_feeding_log","child_name":"Samar","type":"BOTTLE","amount":-5}`, KindExtractionValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ext := &extractor{ai: &fakeAI{extraction: tt.raw}, log: zap.NewNop()}

			_, err := ext.extract(context.Background(), CategoryFeeding, "msg", "Samar", testNow)
			var perr *Error
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tt.kind, perr.Kind)
		})
	}
}

func TestText_Unmarshal(t *testing.T) {
	var c HealthCommand
	require.NoError(t, jsonUnmarshal(`{"value": 7.25}`, &c))
	assert.Equal(t, Text("7.25"), c.Value)

	require.NoError(t, jsonUnmarshal(`{"value": "high"}`, &c))
	assert.Equal(t, Text("high"), c.Value)

	require.NoError(t, jsonUnmarshal(`{"value": null}`, &c))
	assert.Equal(t, Text(""), c.Value)

	assert.Error(t, jsonUnmarshal(`{"value": true}`, &c))
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"2025-03-01T10:00:00Z", "2025-03-01T10:00:00Z", true},
		{"2025-03-01T10:00:00.250Z", "2025-03-01T10:00:00.25Z", true},
		{"2025-03-01T10:00:00-05:00", "2025-03-01T10:00:00-05:00", true},
		{"2025-03-01T10:00:00", "2025-03-01T10:00:00Z", true},
		{"2025-03-01 10:00", "2025-03-01T10:00:00Z", true},
		{"10am", "", false},
		{"2025-13-01T10:00:00Z", "", false},
	}

	for _, tt := range tests {
		got, ok := parseTimestamp(tt.in, testNow.Location())
		assert.Equal(t, tt.ok, ok, tt.in)
		if ok {
			assert.Equal(t, tt.want, got.Format("2006-01-02T15:04:05.999999999Z07:00"), tt.in)
		}
	}
}

func TestJoinOr(t *testing.T) {
	assert.Equal(t, "", joinOr(nil))
	assert.Equal(t, "A", joinOr([]string{"A"}))
	assert.Equal(t, "A or B", joinOr([]string{"A", "B"}))
	assert.Equal(t, "A, B, or C", joinOr([]string{"A", "B", "C"}))
}

func jsonUnmarshal(s string, v any) error {
	return json.Unmarshal([]byte(s), v)
}
