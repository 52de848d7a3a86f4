package geo

import (
	"sort"
	"strings"
	"sync"
)

// Coord is a WGS84 latitude/longitude pair.
type Coord struct {
	Lat float64
	Lon float64
}

// cityCoords covers major sourcing cities, port cities, and regional
// centers. Keys are lowercase as they appear in news text.
var cityCoords = map[string]Coord{
	// United States
	"los angeles": {34.0522, -118.2437}, "long beach": {33.7701, -118.1937},
	"new york": {40.7128, -74.0060}, "new york city": {40.7128, -74.0060},
	"boston": {42.3601, -71.0589}, "chicago": {41.8781, -87.6298},
	"houston": {29.7604, -95.3698}, "miami": {25.7617, -80.1918},
	"seattle": {47.6062, -122.3321}, "san francisco": {37.7749, -122.4194},
	"detroit": {42.3314, -83.0458}, "atlanta": {33.7490, -84.3880},
	"savannah": {32.0835, -81.0998}, "baltimore": {39.2904, -76.6122},
	"norfolk": {36.8508, -76.2859}, "newark": {40.7357, -74.1724},
	"charleston": {32.7765, -79.9311}, "memphis": {35.1495, -90.0490},
	"new orleans": {29.9511, -90.0715}, "philadelphia": {39.9526, -75.1652},

	// China
	"shanghai": {31.2304, 121.4737}, "beijing": {39.9042, 116.4074},
	"shenzhen": {22.5431, 114.0579}, "guangzhou": {23.1291, 113.2644},
	"tianjin": {39.3434, 117.3616}, "qingdao": {36.0671, 120.3826},
	"ningbo": {29.8683, 121.5440}, "wuhan": {30.5928, 114.3055},
	"chengdu": {30.5728, 104.0668}, "dalian": {38.9140, 121.6147},
	"xiamen": {24.4798, 118.0894}, "nanjing": {32.0603, 118.7969},
	"hangzhou": {30.2741, 120.1551}, "suzhou": {31.2990, 120.5853},
	"dongguan": {23.0207, 113.7518}, "zhengzhou": {34.7466, 113.6253},
	"hong kong": {22.3193, 114.1694},

	// Vietnam
	"ho chi minh city": {10.8231, 106.6297}, "ho chi minh": {10.8231, 106.6297},
	"saigon": {10.8231, 106.6297}, "hanoi": {21.0285, 105.8542},
	"haiphong": {20.8449, 106.6881}, "da nang": {16.0544, 108.2022},

	// Indonesia
	"jakarta": {-6.2088, 106.8456}, "surabaya": {-7.2575, 112.7521},
	"bandung": {-6.9175, 107.6191}, "medan": {3.5952, 98.6722},
	"batam": {1.0456, 104.0305},

	// India
	"mumbai": {19.0760, 72.8777}, "new delhi": {28.6139, 77.2090},
	"delhi": {28.7041, 77.1025}, "chennai": {13.0827, 80.2707},
	"kolkata": {22.5726, 88.3639}, "bangalore": {12.9716, 77.5946},
	"bengaluru": {12.9716, 77.5946}, "hyderabad": {17.3850, 78.4867},
	"pune": {18.5204, 73.8567}, "ahmedabad": {23.0225, 72.5714},
	"surat": {21.1702, 72.8311}, "nhava sheva": {18.9500, 72.9500},
	"kochi": {9.9312, 76.2673},

	// Bangladesh
	"dhaka": {23.8103, 90.4125}, "chittagong": {22.3569, 91.7832},
	"gazipur": {23.9999, 90.4203}, "narayanganj": {23.6238, 90.4994},

	// Thailand
	"bangkok": {13.7563, 100.5018}, "laem chabang": {13.0957, 100.8924},
	"rayong": {12.6814, 101.2816},

	// Malaysia
	"kuala lumpur": {3.1390, 101.6869}, "port klang": {3.0000, 101.3833},
	"penang": {5.4164, 100.3327}, "johor bahru": {1.4927, 103.7414},

	// Philippines
	"manila": {14.5995, 120.9842}, "cebu": {10.3157, 123.8854},

	// Pakistan
	"karachi": {24.8607, 67.0011}, "lahore": {31.5204, 74.3587},
	"faisalabad": {31.4504, 73.1350}, "sialkot": {32.4945, 74.5229},

	// Sri Lanka
	"colombo": {6.9271, 79.8612},

	// Myanmar
	"yangon": {16.8661, 96.1951},

	// Cambodia
	"phnom penh": {11.5564, 104.9282}, "sihanoukville": {10.6278, 103.5228},

	// South Korea
	"busan": {35.1796, 129.0756}, "seoul": {37.5665, 126.9780},
	"incheon": {37.4563, 126.7052}, "ulsan": {35.5384, 129.3114},

	// Japan
	"tokyo": {35.6762, 139.6503}, "osaka": {34.6937, 135.5023},
	"yokohama": {35.4437, 139.6380}, "nagoya": {35.1815, 136.9066},
	"kobe": {34.6901, 135.1955},

	// Taiwan
	"taipei": {25.0330, 121.5654}, "kaohsiung": {22.6273, 120.3014},
	"taichung": {24.1477, 120.6736}, "tainan": {22.9998, 120.2269},

	// Singapore
	"singapore": {1.3521, 103.8198},

	// Gulf
	"dubai": {25.2048, 55.2708}, "abu dhabi": {24.4539, 54.3773},
	"jebel ali": {24.9964, 55.0542}, "jeddah": {21.4858, 39.1925},
	"riyadh": {24.6877, 46.7219}, "dammam": {26.4207, 50.0888},
	"muscat": {23.5880, 58.3829},

	// Turkey
	"istanbul": {41.0082, 28.9784}, "izmir": {38.4192, 27.1287},
	"mersin": {36.8000, 34.6333},

	// Egypt
	"cairo": {30.0444, 31.2357}, "suez": {29.9668, 32.5498},
	"alexandria": {31.2001, 29.9187}, "port said": {31.2565, 32.2841},

	// Morocco
	"casablanca": {33.5731, -7.5898}, "tangier": {35.7595, -5.8340},

	// Nigeria
	"lagos": {6.5244, 3.3792}, "apapa": {6.4490, 3.3636},

	// South Africa
	"durban": {-29.8587, 31.0218}, "cape town": {-33.9249, 18.4241},
	"johannesburg": {-26.2041, 28.0473},

	// Kenya
	"mombasa": {-4.0435, 39.6682}, "nairobi": {-1.2921, 36.8219},

	// Germany
	"hamburg": {53.5753, 10.0153}, "frankfurt": {50.1109, 8.6821},
	"munich": {48.1351, 11.5820}, "berlin": {52.5200, 13.4050},
	"bremen": {53.0793, 8.8017}, "stuttgart": {48.7758, 9.1829},

	// Netherlands
	"rotterdam": {51.9244, 4.4777}, "amsterdam": {52.3676, 4.9041},
	"eindhoven": {51.4416, 5.4697},

	// Spain
	"barcelona": {41.3851, 2.1734}, "valencia": {39.4699, -0.3763},
	"madrid": {40.4168, -3.7038}, "algeciras": {36.1408, -5.4536},

	// Italy
	"genoa": {44.4056, 8.9463}, "naples": {40.8518, 14.2681},
	"milan": {45.4654, 9.1859}, "trieste": {45.6495, 13.7768},

	// France
	"le havre": {49.4938, 0.1077}, "marseille": {43.2965, 5.3698},
	"paris": {48.8566, 2.3522}, "lyon": {45.7640, 4.8357},

	// United Kingdom
	"london": {51.5074, -0.1278}, "felixstowe": {51.9600, 1.3500},
	"southampton": {50.9097, -1.4044}, "liverpool": {53.4084, -2.9916},

	// Belgium
	"antwerp": {51.2194, 4.4025}, "ghent": {51.0543, 3.7174},

	// Poland
	"gdansk": {54.3520, 18.6466}, "warsaw": {52.2297, 21.0122},

	// Greece
	"piraeus": {37.9422, 23.6475}, "athens": {37.9838, 23.7275},

	// Black Sea region
	"kyiv": {50.4501, 30.5234}, "kiev": {50.4501, 30.5234},
	"kharkiv": {49.9935, 36.2304}, "odesa": {46.4825, 30.7233},
	"odessa": {46.4825, 30.7233}, "mariupol": {47.0951, 37.5397},
	"mykolaiv": {46.9750, 31.9946}, "chornomorsk": {46.3025, 30.6558},
	"constanta": {44.1598, 28.6348}, "novorossiysk": {44.7236, 37.7688},
	"moscow": {55.7558, 37.6173}, "saint petersburg": {59.9343, 30.3351},
	"vladivostok": {43.1332, 131.9113},

	// Middle East
	"tel aviv": {32.0853, 34.7818}, "haifa": {32.8191, 34.9983},
	"ashdod": {31.7972, 34.6471}, "beirut": {33.8938, 35.5018},
	"baghdad": {33.3152, 44.3661}, "tehran": {35.6892, 51.3890},

	// Mexico
	"manzanillo": {19.1223, -104.3140}, "veracruz": {19.1738, -96.1342},
	"mexico city": {19.4326, -99.1332}, "monterrey": {25.6866, -100.3161},

	// Brazil
	"santos": {-23.9619, -46.3042}, "sao paulo": {-23.5505, -46.6333},
	"rio de janeiro": {-22.9068, -43.1729},

	// Canada
	"vancouver": {49.2827, -123.1207}, "toronto": {43.6532, -79.3832},
	"montreal": {45.5017, -73.5673}, "halifax": {44.6488, -63.5752},
	"prince rupert": {54.3150, -130.3208},
}

var (
	cityOnce  sync.Once
	cityNames []string // longest first for scanning
)

// ExtractCityCoords scans text for a known city name and returns its
// coordinates. Longer names are checked first so "new york city" never
// resolves through "new york" alone, and ties break alphabetically for
// deterministic extraction. The second return is false when no city is
// found.
func ExtractCityCoords(text string) (Coord, bool) {
	if text == "" {
		return Coord{}, false
	}
	cityOnce.Do(func() {
		cityNames = make([]string, 0, len(cityCoords))
		for name := range cityCoords {
			cityNames = append(cityNames, name)
		}
		sort.Slice(cityNames, func(i, j int) bool {
			if len(cityNames[i]) != len(cityNames[j]) {
				return len(cityNames[i]) > len(cityNames[j])
			}
			return cityNames[i] < cityNames[j]
		})
	})

	lower := strings.ToLower(text)
	for _, name := range cityNames {
		if strings.Contains(lower, name) {
			return cityCoords[name], true
		}
	}
	return Coord{}, false
}

// CityCoords returns the coordinates of a known city by name, for
// geocoding of supplier locations without a network round trip.
func CityCoords(city string) (Coord, bool) {
	c, ok := cityCoords[strings.ToLower(strings.TrimSpace(city))]
	return c, ok
}
