/*
Package session orchestrates access to stored conversations.

A conversation is advanced by read-modify-write: load the state, run one
engine step, save the result. The Manager serializes those cycles per
conversation ID with an in-process lock and, when configured, a
distributed lock so several replicas can share one store.
*/
package session
