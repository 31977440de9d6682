package voice

// interpolate4pt applies the EMU8000 4-point cubic interpolation formula
// given in spec.md §4.3 step 7 to the four taps s[-1], s[0], s[1], s[2]
// around fractional position f in [0, 1).
//
//	c(-1) = -f^3 + 2f^2 - f
//	c(0)  =  3f^3 - 5f^2 + 2
//	c(1)  = -3f^3 + 4f^2 + f
//	c(2)  =  f^3 - f^2
//	result = (c(-1)*s[-1] + c(0)*s[0] + c(1)*s[1] + c(2)*s[2]) * 0.5
func interpolate4pt(f float64, sPrev, s0, s1, s2 float64) float64 {
	f2 := f * f
	f3 := f2 * f

	cPrev := -f3 + 2*f2 - f
	c0 := 3*f3 - 5*f2 + 2
	c1 := -3*f3 + 4*f2 + f
	c2 := f3 - f2

	return (cPrev*sPrev + c0*s0 + c1*s1 + c2*s2) * 0.5
}
