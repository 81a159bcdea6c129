// Package essaylist renders an author's essays as an ordered HTML list and
// owns the list's interactive state: the sort direction for dates, the sort
// direction for likes, and whether links point at the rendered HTML copy or
// at the source markdown.
//
// The state lives in a ToggleState value. The free functions SortByDate,
// SortByLikes and Render take the state explicitly; Controller wraps them
// for surfaces (HTTP pages, the terminal UI) that replay user clicks.
//
// Every sort works on a copy of the original essays, so clicking a sort
// control twice always reorders from the same starting point, and the data a
// caller handed in is never reordered behind its back.
package essaylist
