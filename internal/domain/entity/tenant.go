package entity

// TenantScope es la clave de partición (país + restaurante) que aísla los
// datos de un operador. El core la trata como opaca: solo compara igualdad.
type TenantScope struct {
	Country    string
	Restaurant string
}

// Matches indica si los campos de tenant de un registro pertenecen al scope.
func (s TenantScope) Matches(country, restaurant string) bool {
	return s.Country == country && s.Restaurant == restaurant
}
