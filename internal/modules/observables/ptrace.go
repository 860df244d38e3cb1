package observables

import "github.com/aristath/lindblad/pkg/cmat"

// PartialTraceSingle traces out every qubit except `qubit`, returning the
// 2×2 reduced density matrix. Qubit q occupies bit q of the basis index.
func PartialTraceSingle(rho *cmat.Dense, qubit, numQubits int) *cmat.Dense {
	reduced := cmat.NewDense(2)
	others := 1 << (numQubits - 1)

	for a := 0; a < 2; a++ {
		for b := 0; b < 2; b++ {
			var sum complex128
			// Sum over the remaining qubits with identical values in row
			// and column (the trace condition).
			for otherBits := 0; otherBits < others; otherBits++ {
				rowIdx, colIdx := 0, 0
				bitPos := 0
				for q := 0; q < numQubits; q++ {
					if q == qubit {
						rowIdx |= a << q
						colIdx |= b << q
					} else {
						bit := (otherBits >> bitPos) & 1
						rowIdx |= bit << q
						colIdx |= bit << q
						bitPos++
					}
				}
				sum += rho.At(rowIdx, colIdx)
			}
			reduced.Set(a, b, sum)
		}
	}
	return reduced
}

// PartialTracePair traces out every qubit except qubitA and qubitB,
// returning the 4×4 joint reduced matrix. The basis orders the lower-numbered
// qubit as the high bit regardless of the argument order, so swapped calls
// produce the same matrix.
func PartialTracePair(rho *cmat.Dense, qubitA, qubitB, numQubits int) *cmat.Dense {
	reduced := cmat.NewDense(4)
	swapped := qubitA > qubitB
	others := 1 << (numQubits - 2)

	for rowAB := 0; rowAB < 4; rowAB++ {
		for colAB := 0; colAB < 4; colAB++ {
			aRow := (rowAB >> 1) & 1
			bRow := rowAB & 1
			aCol := (colAB >> 1) & 1
			bCol := colAB & 1
			if swapped {
				aRow, bRow = bRow, aRow
				aCol, bCol = bCol, aCol
			}

			var sum complex128
			for otherBits := 0; otherBits < others; otherBits++ {
				rowIdx, colIdx := 0, 0
				bitPos := 0
				for q := 0; q < numQubits; q++ {
					switch q {
					case qubitA:
						rowIdx |= aRow << q
						colIdx |= aCol << q
					case qubitB:
						rowIdx |= bRow << q
						colIdx |= bCol << q
					default:
						bit := (otherBits >> bitPos) & 1
						rowIdx |= bit << q
						colIdx |= bit << q
						bitPos++
					}
				}
				sum += rho.At(rowIdx, colIdx)
			}
			reduced.Set(rowAB, colAB, sum)
		}
	}
	return reduced
}
