// Package credentials supplies authentication material for network
// operations and converts it into go-git transport auth methods.
package credentials
