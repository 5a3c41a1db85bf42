package kinship

// p builds a fixture person.
func p(id string, g Gender, parents []string, partners ...string) Person {
	return Person{ID: id, Gender: g, Parents: parents, Partners: partners}
}

// family is a three-generation fixture:
//
//	gpF1+gpM1 -> mom, aunt        gpF2+gpM2 -> dad, uncle
//	mom+dad -> kid, sis           aunt+uncleM -> cousin -> cousinKid
//	kid+kidWife -> kidSon         kwMom -> kidWife
func family() *Graph {
	return MustGraph(
		p("gpF1", Female, nil, "gpM1"),
		p("gpM1", Male, nil, "gpF1"),
		p("gpF2", Female, nil, "gpM2"),
		p("gpM2", Male, nil, "gpF2"),
		p("mom", Female, []string{"gpF1", "gpM1"}, "dad"),
		p("dad", Male, []string{"gpF2", "gpM2"}, "mom"),
		p("aunt", Female, []string{"gpF1", "gpM1"}, "uncleM"),
		p("uncleM", Male, nil, "aunt"),
		p("uncle", Male, []string{"gpF2", "gpM2"}),
		p("kid", Male, []string{"mom", "dad"}, "kidWife"),
		p("sis", Female, []string{"mom", "dad"}),
		p("cousin", Female, []string{"aunt", "uncleM"}),
		p("cousinKid", Male, []string{"cousin"}),
		p("kwMom", Female, nil),
		p("kidWife", Female, []string{"kwMom"}, "kid"),
		p("kidSon", Male, []string{"kidWife", "kid"}),
		p("loner", Other, nil),
	)
}
