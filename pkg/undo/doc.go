/*
Package undo records reversible edits produced by one logical user action and
commits them atomically.

A Transaction collects edits and change events. Finish pushes the edits as one
history entry (a single Undo reverts all of them, a single Redo reapplies all of
them) and only then dispatches the queued events, so observers never hear about a
transaction that did not commit.

Operations that can run standalone or as part of a larger action take a nullable
*Transaction: when one is supplied they append to it and leave Finish to its
opener; when nil they open, use and finish their own.
*/
package undo
