// Package analysis joins the collection transactions with their catalogs
// and derives the EDA aggregates: the year/bank summary, the monthly
// collection series, the top banks and the most frequent bank responses.
//
// Money is summed with shopspring/decimal so totals match the source
// amounts exactly regardless of row order.
package analysis
