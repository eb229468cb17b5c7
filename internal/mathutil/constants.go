package mathutil

// Dim3 is the order of the linear systems solved during filter design: one
// row per resonance.
const Dim3 = 3
