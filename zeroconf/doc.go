// Package zeroconf discovers services and hosts advertised with multicast DNS
// and DNS-Based Service Discovery on the local network segment.
//
// ## PRIMARY TECHNICAL AUTHORITY
//
// - RFC 6762 §5-§6: multicast queries and responses on 224.0.0.251 / ff02::fb port 5353
// - RFC 6763 §4-§9: PTR/SRV/TXT service instance naming and service type enumeration
// - RFC 1035 §4: DNS message format
//
// ## HOW A DISCOVERY RUNS
//
// A Resolver encodes one question per requested protocol, starts listening
// for ScanTime, and only then multicasts the question on every selected
// adapter, so immediate answers are not missed. The query is resent every
// RetryDelay, up to Retries extra times, while the scan window is open.
//
// Every inbound datagram is decoded. A response matches when one of its
// resource records has an owner name ending in a requested protocol, compared
// case-insensitively, so "MyPrinter._http._tcp.local." matches a query for
// "_http._tcp.local.". Matches are keyed by "<source address>:<display name>";
// a later response for the same key replaces the earlier one.
//
// Queries issued through one Resolver are serialized by its QueryLock unless
// Options.AllowOverlappedQueries is set. Many responders rate-limit identical
// queries, so bursts of overlapping scans return fewer answers.
//
// ## OPERATION STATES
//
//	Idle → Locking → Sending → Draining → Completed
//	                                    ↘ Cancelled / Failed
//
// Cancelling the context at any point returns a *CancelledError and never a
// partial result. Hosts already handed to a streaming callback stay delivered.
//
// ## EXAMPLE USAGE
//
//	r, err := zeroconf.New(zeroconf.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	defer r.Close()
//
//	hosts, err := r.ResolveServices(ctx, "_http._tcp.local.")
//	if err != nil {
//	    return err
//	}
//	for _, h := range hosts {
//	    fmt.Println(h.DisplayName(), h.IPAddress())
//	}
package zeroconf
