package storage

import "fmt"

// ComposeAddresses is the Address Composer of spec.md §4.7: a single
// set-based UPDATE that joins each house to its municipality,
// settlement, and street and writes a comma-joined full_address
// string, type-prefixing the house identifiers ("д. ", "к. ",
// "стр. "). Only houses with all three ancestor foreign keys
// populated are filled; the rest keep a null full_address.
func (a *Adapter) ComposeAddresses() (int64, error) {
	res, err := a.Exec("storage.ComposeAddresses", fmt.Sprintf(`
		UPDATE %[1]s.houses h
		SET full_address = concat_ws(', ',
			mo.name,
			s.type_name || ' ' || s.name,
			st.type_name || ' ' || st.name,
			nullif('д. ' || h.house_number, 'д. '),
			nullif('к. ' || h.building_number, 'к. '),
			nullif('стр. ' || h.structure_number, 'стр. ')
		)
		FROM %[1]s.municipalities mo, %[1]s.settlements s, %[1]s.streets st
		WHERE h.municipality_id = mo.object_id
		AND h.settlement_id = s.object_id
		AND h.street_id = st.object_id
	`, a.Schema))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
