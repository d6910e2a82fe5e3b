package sunat

import (
	"fmt"
	"unicode"
)

// pesos para el cálculo del dígito verificador del RUC (módulo 11, SUNAT).
// Se aplican a los 10 primeros dígitos, de izquierda a derecha.
var rucWeights = [10]int{5, 4, 3, 2, 7, 6, 5, 4, 3, 2}

// ValidateRUC valida que el RUC tenga 11 dígitos, un prefijo de tipo de
// contribuyente conocido (10, 15, 16, 17 o 20) y un dígito verificador
// correcto según el algoritmo módulo 11 de SUNAT.
func ValidateRUC(ruc string) error {
	digits := extractDigits(ruc)
	if len(digits) != 11 {
		return fmt.Errorf("sunat: RUC debe tener 11 dígitos, se encontraron %d", len(digits))
	}
	switch string(digits[:2]) {
	case "10", "15", "16", "17", "20":
	default:
		return fmt.Errorf("sunat: prefijo de RUC desconocido %q", string(digits[:2]))
	}
	expected, err := ComputeRUCCheckDigit(string(digits[:10]))
	if err != nil {
		return err
	}
	if digits[10] != expected {
		return fmt.Errorf("sunat: dígito verificador del RUC inválido: esperado %c, recibido %c", expected, digits[10])
	}
	return nil
}

// ComputeRUCCheckDigit calcula el dígito verificador para los 10 primeros dígitos del RUC.
func ComputeRUCCheckDigit(base string) (byte, error) {
	digits := extractDigits(base)
	if len(digits) < 10 {
		return 0, fmt.Errorf("sunat: se requieren al menos 10 dígitos para calcular el dígito verificador, se encontraron %d", len(digits))
	}
	var sum int
	for i := 0; i < 10; i++ {
		sum += int(digits[i]-'0') * rucWeights[i]
	}
	check := 11 - sum%11
	switch check {
	case 10:
		check = 0
	case 11:
		check = 1
	}
	return byte('0' + check), nil
}

// ValidateDNI valida que el documento sea un DNI de 8 dígitos.
func ValidateDNI(dni string) error {
	digits := extractDigits(dni)
	if len(digits) != 8 || len(digits) != len(dni) {
		return fmt.Errorf("sunat: DNI debe tener exactamente 8 dígitos")
	}
	return nil
}

func extractDigits(s string) []byte {
	var out []byte
	for _, r := range s {
		if unicode.IsDigit(r) {
			out = append(out, byte(r))
		}
	}
	return out
}
