package classify

import "testing"

func TestGrade(t *testing.T) {
	tests := []struct {
		name  string
		title string
		body  string
		want  Signal
	}{
		{
			name:  "port closure is high",
			title: "Major port closure hits Rotterdam",
			body:  "Container traffic suspended",
			want:  SignalHigh,
		},
		{
			name:  "earthquake is high",
			title: "Earthquake strikes near Taiwan chip plants",
			body:  "",
			want:  SignalHigh,
		},
		{
			name:  "high beats medium on overlap",
			title: "Port strike escalates",
			body:  "Dock workers walk out",
			want:  SignalHigh, // "port strike" is high even though "strike" is medium
		},
		{
			name:  "plain strike is medium",
			title: "Rail workers strike over pay",
			body:  "Freight services delayed",
			want:  SignalMedium,
		},
		{
			name:  "tariff is medium",
			title: "New tariff on steel imports announced",
			body:  "",
			want:  SignalMedium,
		},
		{
			name:  "no keyword grades low",
			title: "Factory output slows amid weak demand",
			body:  "Production targets revised",
			want:  SignalLow,
		},
		{
			name:  "matching in body only",
			title: "Breaking news from the Gulf",
			body:  "A trade blockade has been imposed on the strait",
			want:  SignalHigh,
		},
		{
			name:  "case insensitive",
			title: "SANCTIONS IMPOSED ON EXPORTS",
			body:  "",
			want:  SignalHigh,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Grade(tt.title, tt.body); got != tt.want {
				t.Errorf("Grade(%q, %q) = %v, want %v", tt.title, tt.body, got, tt.want)
			}
		})
	}
}

func TestSignalWeight(t *testing.T) {
	if got := SignalHigh.Weight(1.0, 0.7, 0.4); got != 1.0 {
		t.Errorf("high weight = %v, want 1.0", got)
	}
	if got := SignalMedium.Weight(1.0, 0.7, 0.4); got != 0.7 {
		t.Errorf("medium weight = %v, want 0.7", got)
	}
	if got := SignalLow.Weight(1.0, 0.7, 0.4); got != 0.4 {
		t.Errorf("low weight = %v, want 0.4", got)
	}
}

func TestRelevant(t *testing.T) {
	tests := []struct {
		name  string
		title string
		body  string
		want  bool
	}{
		{
			name:  "disruption plus supply context passes",
			title: "Typhoon forces port shutdown in Shenzhen",
			body:  "Container terminals closed for 48 hours",
			want:  true,
		},
		{
			name:  "disruption without supply context fails",
			title: "Earthquake shakes remote mountain region",
			body:  "No casualties reported",
			want:  false,
		},
		{
			name:  "supply context without disruption fails",
			title: "New container terminal opens at the port",
			body:  "Shipping capacity expands",
			want:  false,
		},
		{
			name:  "blocklisted topic fails despite both keywords",
			title: "Hollywood strike disrupts production",
			body:  "Studios halt distribution deals",
			want:  false,
		},
		{
			name:  "medical shortage blocked",
			title: "Drug shortage disrupts hospital supply chains",
			body:  "",
			want:  false,
		},
		{
			name:  "crypto blocked",
			title: "Bitcoin crash disrupts trade on exchanges",
			body:  "",
			want:  false,
		},
		{
			name:  "conflict with shipping context passes",
			title: "Missile attack forces vessels to divert from the strait",
			body:  "Tanker traffic rerouted around the blockade",
			want:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, reason := Relevant(tt.title, tt.body)
			if got != tt.want {
				t.Errorf("Relevant(%q) = %v (%s), want %v", tt.title, got, reason, tt.want)
			}
			if got && reason != "" {
				t.Errorf("relevant text carried reason %q, want empty", reason)
			}
			if !got && reason == "" {
				t.Error("rejected text carried no reason")
			}
		})
	}
}

func TestTypeOf(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Typhoon batters container port", "natural_disaster"},
		{"Dock workers strike over contract", "labor_strike"},
		{"Military invasion disrupts grain exports", "war_conflict"},
		{"Sanctions target steel exports", "trade_policy"},
		{"Vessel grounded in canal, traffic congested", "logistics_failure"},
		{"Explosion at refinery halts fuel output", "infrastructure_damage"},
		{"Semiconductor shortage worsens", "shortage"},
		{"Shipping rates climb on strong demand", "other"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := TypeOf(tt.title, ""); got != tt.want {
				t.Errorf("TypeOf(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}
