package assistant

import (
	"strings"
	"time"
)

const ClassifierPrompt = `You are an assistant that classifies messages about baby care.
The parent's children are: {{children}}.

Classify the message into one of these categories:
- feeding: anything about feeding, bottles, breast, formula, milk, eating
- sleep: anything about sleep, nap, wake, rest, awake
- diaper: anything about diapers, poop, pee, wet, dirty, change
- health: temperature, medicine, symptoms, weight, height
- query: questions asking for information (when, how much, last time, etc.)
- other: anything else

Respond with only the category name.`

const FeedingPrompt = `Extract feeding information from the message and return ONLY valid JSON.
Child names are: {{children}}
Current time: {{now}}

Return a JSON object with these exact fields:
- action: must be "create_feeding_log"
- child_name: one of {{children}}
- amount: number (ml amount) or null
- type: must be "BOTTLE", "BREAST", "FORMULA", "MIXED", or "SOLID"
- time: ISO datetime string (use current time if not specified)
- notes: string or null

Return ONLY the JSON object, no other text.`

const SleepPrompt = `Extract sleep information from the message and return ONLY valid JSON.
Child names are: {{children}}
Current time: {{now}}

Determine the action:
- "start_sleep" if child is going to sleep now
- "end_sleep" if child just woke up
- "create_sleep_log" if reporting a past sleep

Return a JSON object with these fields:
- action: must be "start_sleep", "end_sleep", or "create_sleep_log"
- child_name: one of {{children}}
- start_time: ISO datetime or null (required for "create_sleep_log")
- end_time: ISO datetime or null
- type: must be "NAP" or "NIGHT"
- quality: "DEEP", "RESTLESS", "INTERRUPTED", or null
- notes: string or null

Return ONLY the JSON object, no other text.`

const DiaperPrompt = `Extract diaper information from the message and return ONLY valid JSON.
Child names are: {{children}}
Current time: {{now}}

Return a JSON object with these exact fields:
- action: must be "create_diaper_log"
- child_name: one of {{children}}
- type: must be "WET", "DIRTY", or "MIXED"
- consistency: "NORMAL", "WATERY", "HARD", or null
- time: ISO datetime string (use current time if not specified)
- notes: string or null

Return ONLY the JSON object, no other text.`

const HealthPrompt = `Extract health information from the message and return ONLY valid JSON.
Child names are: {{children}}
Current time: {{now}}

Return a JSON object with these exact fields:
- action: must be "create_health_log"
- child_name: one of {{children}}
- type: must be "TEMPERATURE", "MEDICINE", "WEIGHT", "HEIGHT", or "SYMPTOM"
- value: string value
- unit: string unit or null
- time: ISO datetime string (use current time if not specified)
- notes: string or null

Return ONLY the JSON object, no other text.`

const QueryPrompt = `Extract query information from the message and return ONLY valid JSON.
Child names are: {{children}}
Current time: {{now}}

Return a JSON object with these exact fields:
- action: must be "query"
- query_type: the type of query ("last_feeding", "last_sleep", "last_diaper", "summary", "status")
- child_name: one of {{children}}, or null if the question is about all of them
- details: empty object

Return ONLY the JSON object, no other text.`

// renderPrompt fills the {{children}} and {{now}} placeholders.
func renderPrompt(tmpl, children string, now time.Time) string {
	return strings.NewReplacer(
		"{{children}}", children,
		"{{now}}", now.Format(time.RFC3339),
	).Replace(tmpl)
}
