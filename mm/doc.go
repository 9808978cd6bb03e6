/*
Package mm is a client for the ModemManager D-Bus service.

Typed wrappers exist for the objects ModemManager exports: the root
[Manager], each [Modem] (and its [ModemSimple] interface), the [Sim] of a
modem and its packet data [Bearer]s. The wrappers only hold an object path
and read every value from the service when asked, so they never go stale.

All remote access goes through the [Accessor] interface. [DBusAccessor]
implements it on the system bus using godbus; the mmtest package provides an
in-memory fake.

Errors are classified as [ErrServiceUnreachable], [ErrInvalidHandle] or
[*RemoteFault]. Nothing in this package retries.

References:
  - https://www.freedesktop.org/software/ModemManager/api/latest/
*/
package mm
