package payment

import (
	"strings"

	"github.com/shopspring/decimal"
)

var bankTransferSteps = []string{
	"Buka aplikasi mobile banking {{method}} atau kunjungi ATM terdekat",
	"Pilih menu Transfer ke rekening {{method}}",
	"Masukkan nomor rekening {{account_number}} a.n. {{account_holder}}",
	"Transfer tepat sebesar {{amount}}",
	"Tulis kode pesanan {{reference}} pada berita transfer",
	"Foto atau screenshot bukti transfer lalu unggah saat checkout",
	"Pesanan diproses setelah admin memverifikasi pembayaran",
}

// GetInstructions returns the step templates for a method type.
func GetInstructions(methodType string) []string {
	if methodType == MethodTypeBankTransfer {
		return bankTransferSteps
	}
	return []string{
		"Ikuti instruksi pembayaran yang tersedia pada halaman ini",
	}
}

type InstructionVars map[string]string

// InjectVariables replaces {{key}} placeholders. Unknown placeholders are
// left untouched.
func InjectVariables(steps []string, vars InstructionVars) []string {
	result := make([]string, 0, len(steps))

	for _, step := range steps {
		updated := step
		for key, value := range vars {
			updated = strings.ReplaceAll(updated, "{{"+key+"}}", value)
		}
		result = append(result, updated)
	}

	return result
}

// FormatIDR renders an amount as rupiah with dot thousands separators,
// e.g. Rp1.500.000.
func FormatIDR(amount decimal.Decimal) string {
	neg := amount.IsNegative()
	digits := amount.Abs().Round(0).StringFixed(0)

	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}

	if neg {
		return "-Rp" + b.String()
	}
	return "Rp" + b.String()
}
