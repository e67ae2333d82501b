package storage

import "fmt"

// SetCadastralNumber writes PARAM type_id "8" onto a house.
func (a *Adapter) SetCadastralNumber(objectID int64, value string) error {
	_, err := a.Exec("storage.SetCadastralNumber",
		fmt.Sprintf("UPDATE %s.houses SET cadastral_number = $1 WHERE object_id = $2", a.Schema),
		value, objectID)
	return err
}

// SetResidentsCount writes PARAM type_id "14" onto a house.
func (a *Adapter) SetResidentsCount(objectID int64, value int) error {
	_, err := a.Exec("storage.SetResidentsCount",
		fmt.Sprintf("UPDATE %s.houses SET residents_count = $1 WHERE object_id = $2", a.Schema),
		value, objectID)
	return err
}

// SetFloorsCount writes PARAM type_id "15" onto a house.
func (a *Adapter) SetFloorsCount(objectID int64, value int) error {
	_, err := a.Exec("storage.SetFloorsCount",
		fmt.Sprintf("UPDATE %s.houses SET floors_count = $1 WHERE object_id = $2", a.Schema),
		value, objectID)
	return err
}
