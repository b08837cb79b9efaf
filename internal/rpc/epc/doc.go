// Package epc implements the server side of EPC, the RPC protocol Emacs
// uses to talk to external processes.
//
// Every message is a six digit lowercase hex byte count followed by that many
// bytes of UTF-8 S-expression:
//
//	000015(call 1 query ("hi"))
//
// The server understands (call UID METHOD ARGS) and (methods UID) and answers
// with (return UID VALUE), (return-error UID MESSAGE) for handler failures,
// or (epc-error UID MESSAGE) for protocol failures such as an unknown method.
package epc
