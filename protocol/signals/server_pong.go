package signals

// ServerPong (tag 4) and ServerEndOfStream (tag 5) carry no payload; their
// arrival is the entire signal, so there is nothing to decode beyond the
// tag the session already read.
