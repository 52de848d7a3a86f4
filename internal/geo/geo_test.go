package geo

import (
	"math"
	"testing"
)

func TestHaversineKm(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		want                   float64
		tolerance              float64
	}{
		{
			name: "same point is zero",
			lat1: 31.2304, lon1: 121.4737, lat2: 31.2304, lon2: 121.4737,
			want: 0, tolerance: 0.001,
		},
		{
			name: "shanghai to ningbo",
			lat1: 31.2304, lon1: 121.4737, lat2: 29.8683, lon2: 121.5440,
			want: 151, tolerance: 5,
		},
		{
			name: "rotterdam to antwerp",
			lat1: 51.9244, lon1: 4.4777, lat2: 51.2194, lon2: 4.4025,
			want: 78, tolerance: 5,
		},
		{
			name: "shanghai to rotterdam",
			lat1: 31.2304, lon1: 121.4737, lat2: 51.9244, lon2: 4.4777,
			want: 8890, tolerance: 50,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HaversineKm(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			if math.Abs(got-tt.want) > tt.tolerance {
				t.Errorf("HaversineKm = %.1f, want %.1f ± %.1f", got, tt.want, tt.tolerance)
			}
		})
	}
}

func TestDetectCountry(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"direct name", "Floods hit southern Vietnam, factories closed", "Vietnam"},
		{"alias resolves", "Britain faces port congestion", "United Kingdom"},
		{"longest match wins", "South Africa mining exports halted", "South Africa"},
		{"case insensitive", "EXPLOSION AT GERMANY CHEMICAL PLANT", "Germany"},
		{"no country", "Global shipping rates rise", ""},
		{"empty text", "", ""},
		{"ukraine not shadowed", "Grain exports from Ukraine resume", "Ukraine"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectCountry(tt.text); got != tt.want {
				t.Errorf("DetectCountry(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestContinent(t *testing.T) {
	tests := []struct {
		country string
		want    string
	}{
		{"China", "AS"},
		{"vietnam", "AS"},
		{"Germany", "EU"},
		{"britain", "EU"},
		{"United States", "NA"},
		{"Brazil", "SA"},
		{"Kenya", "AF"},
		{"Australia", "OC"},
		{"Atlantis", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Continent(tt.country); got != tt.want {
			t.Errorf("Continent(%q) = %q, want %q", tt.country, got, tt.want)
		}
	}
}

func TestSameCountry(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"Vietnam", "viet nam", true},
		{"United Kingdom", "Britain", true},
		{"China", "Vietnam", false},
		{"", "China", false},
		{"Narnia", "Narnia", true},
	}
	for _, tt := range tests {
		if got := SameCountry(tt.a, tt.b); got != tt.want {
			t.Errorf("SameCountry(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestExtractCityCoords(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantCity string
		wantOK   bool
	}{
		{"port city in text", "Typhoon closes terminals in Shenzhen", "shenzhen", true},
		{"multiword city", "Strike spreads to Ho Chi Minh City factories", "ho chi minh city", true},
		{"longest name preferred", "Logistics snarl in New York City area", "new york city", true},
		{"no city", "Global semiconductor shortage deepens", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractCityCoords(tt.text)
			if ok != tt.wantOK {
				t.Fatalf("ExtractCityCoords(%q) ok = %v, want %v", tt.text, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			want := cityCoords[tt.wantCity]
			if got != want {
				t.Errorf("ExtractCityCoords(%q) = %+v, want %+v (%s)", tt.text, got, want, tt.wantCity)
			}
		})
	}
}

func TestCityCoords(t *testing.T) {
	c, ok := CityCoords("  Rotterdam ")
	if !ok {
		t.Fatal("CityCoords(Rotterdam) not found")
	}
	if math.Abs(c.Lat-51.9244) > 0.001 {
		t.Errorf("Rotterdam lat = %v, want 51.9244", c.Lat)
	}
	if _, ok := CityCoords("nowhere"); ok {
		t.Error("CityCoords(nowhere) found, want miss")
	}
}
