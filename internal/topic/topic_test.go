package topic

import "testing"

func TestDetect(t *testing.T) {
	cases := []struct {
		question string
		want     Context
	}{
		{"What is the wifi password?", ContextWiFi},
		{"How do I connect to the internet?", ContextWiFi},
		{"What time is check-in?", ContextCheckIn},
		{"When do we need to check out?", ContextCheckOut},
		{"What's the code for the door keypad?", ContextAccess},
		{"Where can I park the car?", ContextParking},
		{"How does the hot tub work?", ContextAmenities},
		{"Any good restaurants nearby?", ContextLocal},
		{"Are pets allowed? What about smoking?", ContextRules},
		{"The heating is broken, this is urgent", ContextEmergency},
	}

	for _, tc := range cases {
		got, _, ok := Detect(tc.question)
		if !ok {
			t.Errorf("Detect(%q) found nothing, want %s", tc.question, tc.want)
			continue
		}
		if got != tc.want {
			t.Errorf("Detect(%q) = %s, want %s", tc.question, got, tc.want)
		}
	}
}

func TestDetectNoMatch(t *testing.T) {
	for _, q := range []string{"Thanks so much!", "ok", ""} {
		if ctx, _, ok := Detect(q); ok {
			t.Errorf("Detect(%q) = %s, want no match", q, ctx)
		}
	}
}

func TestDetectScoring(t *testing.T) {
	// "wifi" (4) + "password" (8) = 12 -> 12/20.
	_, conf, ok := Detect("What is the wifi password?")
	if !ok || conf != 0.6 {
		t.Errorf("confidence = %v, want 0.6", conf)
	}
}

func TestDetectConfidenceCapped(t *testing.T) {
	_, conf, ok := Detect("wifi wi-fi internet network password router connection")
	if !ok || conf != 1.0 {
		t.Errorf("confidence = %v, want 1.0", conf)
	}
}

func TestDetectTieKeepsFirstSeen(t *testing.T) {
	// "early" scores 5 for check_in, "leave" scores 5 for check_out.
	ctx, _, ok := Detect("early leave")
	if !ok || ctx != ContextCheckIn {
		t.Errorf("tie resolved to %s, want %s", ctx, ContextCheckIn)
	}
}

func TestResolveDetected(t *testing.T) {
	res := Resolve("What is the wifi password?", ContextParking)
	if res.Context != ContextWiFi || res.Source != SourceDetected {
		t.Errorf("got %+v", res)
	}
}

func TestResolveAtThreshold(t *testing.T) {
	// "router" alone scores 6 -> exactly 0.3, which still counts.
	res := Resolve("is the router on", "")
	if res.Context != ContextWiFi || res.Source != SourceDetected {
		t.Errorf("got %+v", res)
	}
}

func TestResolveLowConfidenceFallsBack(t *testing.T) {
	// Best score 5 -> 0.25, below the threshold.
	res := Resolve("early leave", ContextRules)
	if res.Context != ContextRules || res.Source != SourceFallback {
		t.Errorf("got %+v", res)
	}
}

func TestResolveDefaultsToGeneral(t *testing.T) {
	res := Resolve("Thanks so much!", "")
	if res.Context != ContextGeneral || res.Source != SourceFallback {
		t.Errorf("got %+v", res)
	}
}
