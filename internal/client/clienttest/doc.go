// Package clienttest provides in-process fakes of the cracker and password
// manager services for tests. Both are httptest servers routed with
// routegroup; their behaviour can be scripted per job or per entry.
package clienttest
