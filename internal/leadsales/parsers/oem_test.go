package parsers

import "testing"

func TestLooksLikeVIN(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"valid vin", "WDB2110421A123456", true},
		{"lowercase vin", "wdb2110421a123456", true},
		{"vin with surrounding spaces", "  WDB2110421A123456  ", true},
		{"contains I", "WDB2110421I123456", false},
		{"contains O", "WDB2110421O123456", false},
		{"contains Q", "WDB2110421Q123456", false},
		{"too short", "WDB2110421A12345", false},
		{"too long", "WDB2110421A1234567", false},
		{"part number", "4N0907998", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LooksLikeVIN(tt.in); got != tt.want {
				t.Errorf("LooksLikeVIN(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestExtractOEM(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain part number", "Нужен фильтр 4N0907998", "4N0907998"},
		{"vin is ignored next to oem", "VIN WDB2110421A123456 нужно 5QM411105R", "5QM411105R"},
		{"longer candidate preferred", "ABC123 или 4N0907998", "4N0907998"},
		{"url stripped", "смотрите https://shop.example.com/part/ABC123XYZ99", ""},
		{"tracking token ignored", "пришел с ссылки chat123456", ""},
		{"order number in order context ignored", "где заказ 10212345", ""},
		{"vin only", "LFV3B20V0P3507500 Volkswagen Talagon", ""},
		{"letters only", "нужна фара для пассата", ""},
		{"digit only without order context kept", "10212345", "10212345"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractOEM(tt.in); got != tt.want {
				t.Errorf("ExtractOEM(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestHasOEMLikeToken(t *testing.T) {
	if !HasOEMLikeToken("нужно 5QM411105R") {
		t.Error("expected part-number token to be detected")
	}
	if HasOEMLikeToken("WDB2110421A123456") {
		t.Error("a VIN must not count as an OEM-like token")
	}
	if HasOEMLikeToken("просто текст без номеров") {
		t.Error("plain text must not count as an OEM-like token")
	}
}

func TestHasVINToken(t *testing.T) {
	if !HasVINToken("вот вин wdb2110421a123456") {
		t.Error("expected VIN to be detected in text")
	}
	if HasVINToken("нужно 5QM411105R") {
		t.Error("part number must not be detected as VIN")
	}
}
