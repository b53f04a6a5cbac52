package extraction

// ValidCardNumber checks the CDV digit of a 9-digit health insurance (TAJ) number.
// The first eight digits are weighted 3,7,3,7,... and the sum mod 10 must equal the ninth.
func ValidCardNumber(number string) bool {
	if len(number) != 9 || !isDigits(number) {
		return false
	}
	sum := 0
	for i := 0; i < 8; i++ {
		weight := 7
		if i%2 == 0 {
			weight = 3
		}
		sum += int(number[i]-'0') * weight
	}
	return sum%10 == int(number[8]-'0')
}
