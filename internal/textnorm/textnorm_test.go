package textnorm

import "testing"

func TestDecodeEncodedWord(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		want   string
		status DecodeStatus
	}{
		{
			name:   "base64 utf-8",
			in:     "=?UTF-8?B?SG9sYSBtdW5kbw==?=",
			want:   "Hola mundo",
			status: Decoded,
		},
		{
			name:   "base64 without padding",
			in:     "=?utf-8?b?SG9sYQ?=",
			want:   "Hola",
			status: Decoded,
		},
		{
			name:   "quoted utf-8 multibyte",
			in:     "=?utf-8?Q?Reuni=C3=B3n_ma=C3=B1ana?=",
			want:   "Reunión mañana",
			status: Decoded,
		},
		{
			name:   "quoted latin1",
			in:     "=?ISO-8859-1?Q?Caf=E9?=",
			want:   "Café",
			status: Decoded,
		},
		{
			name:   "surrounding text kept",
			in:     "Re: =?UTF-8?Q?factura_n=C2=BA_12?= pendiente",
			want:   "Re: factura nº 12 pendiente",
			status: Decoded,
		},
		{
			name:   "several words",
			in:     "=?UTF-8?Q?a?= =?UTF-8?B?Yg==?=",
			want:   "a b",
			status: Decoded,
		},
		{
			name:   "plain text is identity",
			in:     "Meeting follow-up",
			want:   "Meeting follow-up",
			status: Unchanged,
		},
		{
			name:   "almost encoded word is identity",
			in:     "=?UTF-8?X?abc?=",
			want:   "=?UTF-8?X?abc?=",
			status: Unchanged,
		},
		{
			name:   "broken base64 returns input untouched",
			in:     "ok =?UTF-8?Q?bien?= =?UTF-8?B?***?=",
			want:   "ok =?UTF-8?Q?bien?= =?UTF-8?B?***?=",
			status: FellBack,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecodeEncodedWord(tt.in)
			if got.Text != tt.want {
				t.Errorf("text: expected %q, got %q", tt.want, got.Text)
			}
			if got.Status != tt.status {
				t.Errorf("status: expected %v, got %v", tt.status, got.Status)
			}
			if tt.status == FellBack && got.Err == nil {
				t.Errorf("expected an error on fallback")
			}
		})
	}
}

func TestDecodeEncodedWordUnknownCharsetFallsBackToUTF8(t *testing.T) {
	inputs := map[string]string{
		"=?x-made-up?B?w7FhbmR1?=":    "ñandu",
		"=?klingon?Q?=C3=A9t=C3=A9?=": "été",
		"=?nope?Q?plain?=":            "plain",
	}

	for in, want := range inputs {
		got := DecodeEncodedWord(in)
		if got.Status != Decoded {
			t.Errorf("%q: expected Decoded, got %v (%v)", in, got.Status, got.Err)
		}
		if got.Text != want {
			t.Errorf("%q: expected %q, got %q", in, want, got.Text)
		}
	}
}

func TestDecodeEncodedWordInvalidUTF8IsReplaced(t *testing.T) {
	got := DecodeEncodedWord("=?bogus?Q?a=FFb?=")
	if got.Text != "a�b" {
		t.Errorf("expected replacement character, got %q", got.Text)
	}
}

func TestNormalizeSender(t *testing.T) {
	tests := map[string]string{
		"":                              UnknownSender,
		"   ":                           UnknownSender,
		`"Ana Pérez" <ana@example.com>`: `Ana Pérez" <ana@example.com>`,
		`"Soporte"`:                     "Soporte",
		"  bob@example.com ":            "bob@example.com",
		`"`:                             "",
	}

	for in, want := range tests {
		if got := NormalizeSender(in); got != want {
			t.Errorf("NormalizeSender(%q): expected %q, got %q", in, want, got)
		}
	}
	if UnknownSender != "Desconocido" {
		t.Errorf("unexpected placeholder %q", UnknownSender)
	}
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Clientes VIP":            "clientes-vip",
		"  !!  ":                  "",
		"Facturación y Pagos":     "facturacion-y-pagos",
		"Señales -- Importantes!": "senales-importantes",
		"Año 2025":                "ano-2025",
		"---":                     "",
		"Ünïcödé":                 "unicode",
	}

	for in, want := range tests {
		if got := Slugify(in); got != want {
			t.Errorf("Slugify(%q): expected %q, got %q", in, want, got)
		}
	}
}

func TestTrimPtr(t *testing.T) {
	if got := TrimPtr(nil); got != "" {
		t.Errorf("expected empty string for nil, got %q", got)
	}
	s := "  x  "
	if got := TrimPtr(&s); got != "x" {
		t.Errorf("expected %q, got %q", "x", got)
	}
}
