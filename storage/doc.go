package storage

// storage contains the KeyValue interface for working with a persistent key/
// value store, as well as an implementation for BadgerDB. The History type
// uses it to keep a record of the messages the mail server accepted. Only
// History knows _what_ is stored; the KeyValue implementations deal in opaque
// binary data.
