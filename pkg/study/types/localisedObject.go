package types

type LocalisedObject struct {
	Code string `bson:"code" json:"code"`
	// For texts
	Parts []ExpressionArg `bson:"parts" json:"parts"`
}

func cloneLocalisedObjects(objs []LocalisedObject) []LocalisedObject {
	if objs == nil {
		return nil
	}
	c := make([]LocalisedObject, len(objs))
	for i, o := range objs {
		c[i] = LocalisedObject{Code: o.Code}
		if o.Parts != nil {
			c[i].Parts = make([]ExpressionArg, len(o.Parts))
			for j, p := range o.Parts {
				c[i].Parts[j] = p.Clone()
			}
		}
	}
	return c
}
