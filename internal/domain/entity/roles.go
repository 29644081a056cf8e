package entity

// Roles de la aplicación. El supervisor (y el admin) revisan aprobaciones y
// cuentan con aprobación implícita de sobre-entregas; el almacenista registra
// transacciones y requisiciones.
const (
	RoleAdmin       = "admin"
	RoleSupervisor  = "supervisor"
	RoleAlmacenista = "almacenista"
)
