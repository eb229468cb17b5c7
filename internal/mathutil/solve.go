package mathutil

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// ErrSingular is returned when a linear system has no unique solution.
var ErrSingular = errors.New("matrix is singular")

// Solve3 solves the 3x3 linear system a·x = b.
//
// The system is factorized with LU decomposition. A zero determinant, or a
// condition number so large that gonum reports the result as unreliable,
// is treated as singular and returns ErrSingular.
func Solve3(a [Dim3][Dim3]float64, b [Dim3]float64) ([Dim3]float64, error) {
	var x [Dim3]float64

	data := make([]float64, 0, Dim3*Dim3)
	for row := range Dim3 {
		data = append(data, a[row][:]...)
	}
	A := mat.NewDense(Dim3, Dim3, data)
	B := mat.NewVecDense(Dim3, b[:])

	var lu mat.LU
	lu.Factorize(A)
	if lu.Det() == 0 {
		return x, ErrSingular
	}

	var sol mat.VecDense
	if err := lu.SolveVecTo(&sol, false, B); err != nil {
		return x, fmt.Errorf("%w: %v", ErrSingular, err)
	}

	for i := range Dim3 {
		x[i] = sol.AtVec(i)
	}
	return x, nil
}

// Dot3 returns the dot product a·b.
func Dot3(a, b [Dim3]float64) float64 {
	return mat.Dot(mat.NewVecDense(Dim3, a[:]), mat.NewVecDense(Dim3, b[:]))
}

// RoundUpTo rounds v up to the next multiple of m. m must be positive.
func RoundUpTo(v, m int) int {
	return DivCeil(v, m) * m
}

// DivCeil returns a/b rounded towards positive infinity for non-negative a
// and positive b.
func DivCeil(a, b int) int {
	return (a + b - 1) / b
}
