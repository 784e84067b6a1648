package entity

import "slices"

// Roles válidos emitidos por el proveedor de autenticación.
const (
	RoleAdministrador = "ADMINISTRADOR"
	RoleSupervisor    = "SUPERVISOR"
	RoleGerente       = "GERENTE"
	RoleEncargado     = "ENCARGADO"
	RoleVendedor      = "VENDEDOR"
)

// ReceivingRoles roles que pueden recibir mercancía.
var ReceivingRoles = []string{RoleSupervisor, RoleGerente, RoleEncargado, RoleVendedor}

// Actor identidad explícita de quien invoca un caso de uso: usuario, rol y tiendas permitidas.
// Para SUPERVISOR StoreIDs son las tiendas supervisadas; para el resto, su propia tienda.
type Actor struct {
	UserID   string
	Name     string
	Role     string
	StoreIDs []string
}

// CanReceive indica si el rol puede recibir mercancía.
func (a Actor) CanReceive() bool {
	return slices.Contains(ReceivingRoles, a.Role)
}

// IsAdmin indica si el actor ve todas las tiendas.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdministrador
}

// HasStore indica si la tienda está dentro del alcance del actor.
func (a Actor) HasStore(storeID string) bool {
	if a.IsAdmin() {
		return true
	}
	return slices.Contains(a.StoreIDs, storeID)
}
