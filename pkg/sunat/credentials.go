package sunat

// SOLCredentials credenciales Clave SOL del emisor para el billService.
// El usuario del WS-Security es la concatenación RUC+usuario SOL, sin separador.
type SOLCredentials struct {
	RUC      string
	User     string
	Password string
}

// Username usuario WS-Security: RUC concatenado con el usuario SOL.
func (c SOLCredentials) Username() string {
	return c.RUC + c.User
}
