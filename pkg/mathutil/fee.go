package mathutil

// LessFee subtracts from amount a fee expressed in basis points (ie. 0.25% =
// 25). The fee is truncated towards zero, so the returned net amount is never
// less than amount - amount*bps/10000.
func LessFee(amount, feeAsBasisPoint uint64) (withoutFee, calculatedFee uint64) {
	calculatedFee = BasisPoints(amount, feeAsBasisPoint)
	return amount - calculatedFee, calculatedFee
}
