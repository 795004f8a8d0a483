package entity

// Location es un destino de salida. Enumeración cerrada, sembrada al iniciar; no editable.
type Location struct {
	ID   string
	Name string
}

// DefaultLocations son los destinos fijos del hospital veterinario.
func DefaultLocations() []Location {
	return []Location{
		{ID: "1", Name: "Farmácia"},
		{ID: "2", Name: "Lab. Clínico"},
		{ID: "3", Name: "Centro Cirúrgico"},
		{ID: "4", Name: "Lab. Reprodução"},
		{ID: "5", Name: "Clínica Grandes Animais"},
		{ID: "6", Name: "Aula Externa"},
	}
}
